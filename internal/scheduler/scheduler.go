package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sony/gobreaker"

	"github.com/elliott-ruebush/snotel-lib/pkg/snotel"
)

// Source is the slice of the snotel client the refresh job needs.
type Source interface {
	GetStationsMetadata(ctx context.Context, forceUpdate bool) (*snotel.Table, error)
	GetAllStationData(ctx context.Context, forceUpdate bool) (*snotel.Table, error)
}

// Scheduler periodically re-warms the cache artifacts so requests are
// served from disk instead of waiting on the upstream archive. A
// circuit breaker stops the job from hammering a failing upstream;
// the breaker lives here rather than in the library, whose contract
// is single-shot fail-fast fetches.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	source      Source
	interval    time.Duration
	refreshBulk bool
	breaker     *gobreaker.CircuitBreaker
}

// New creates a new Scheduler.
func New(source Source, interval time.Duration, refreshBulk bool) *Scheduler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "snotel-refresh",
		MaxRequests: 1,
		Interval:    1 * time.Hour,
		Timeout:     30 * time.Minute,
	})

	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		source:      source,
		interval:    interval,
		refreshBulk: refreshBulk,
		breaker:     cb,
	}
}

// Start schedules the periodic refresh and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running cache refresh job")

		_, err := s.breaker.Execute(func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			if _, err := s.source.GetStationsMetadata(ctx, true); err != nil {
				return nil, err
			}
			if s.refreshBulk {
				if _, err := s.source.GetAllStationData(ctx, true); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			log.Printf("scheduler: cache refresh failed: %v", err)
			return
		}
		log.Println("scheduler: completed cache refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
