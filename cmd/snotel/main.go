package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/elliott-ruebush/snotel-lib/pkg/snotel"
)

var (
	cacheDir  string
	startDate string
	endDate   string
	force     bool
	verbose   bool
)

func main() {
	flag.StringVar(&cacheDir, "cache-dir", "", "cache directory (default: platform cache dir)")
	flag.StringVar(&startDate, "start", "", "inclusive start date (YYYY-MM-DD)")
	flag.StringVar(&endDate, "end", "", "inclusive end date (YYYY-MM-DD)")
	flag.BoolVar(&force, "force", false, "bypass the cache and refetch")
	flag.BoolVar(&verbose, "v", false, "log progress to stderr")
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "snotel: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: snotel [flags] <metadata|station|all> [stationID]")
	}

	// Fall back to environment for the cache directory.
	if cacheDir == "" {
		cacheDir = os.Getenv("SNOTEL_CACHE_DIR")
	}

	opts := []snotel.Option{snotel.WithCacheDir(cacheDir)}
	if verbose {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		opts = append(opts, snotel.WithLogger(zl))
	}
	client, err := snotel.New(opts...)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var table *snotel.Table
	switch args[0] {
	case "metadata":
		table, err = client.GetStationsMetadata(ctx, force)
	case "station":
		if len(args) < 2 {
			return fmt.Errorf("station command requires a station ID")
		}
		table, err = client.GetStationData(ctx, args[1], snotel.StationDataRequest{
			StartDate:   startDate,
			EndDate:     endDate,
			ForceUpdate: force,
		})
	case "all":
		table, err = client.GetAllStationData(ctx, force)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(table.Rows())
}
