package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/elliott-ruebush/snotel-lib/pkg/snotel"
)

var validate = validator.New()

// DataSource is the slice of the snotel client the API depends on.
type DataSource interface {
	GetStationsMetadata(ctx context.Context, forceUpdate bool) (*snotel.Table, error)
	GetStationData(ctx context.Context, stationID string, req snotel.StationDataRequest) (*snotel.Table, error)
	GetAllStationData(ctx context.Context, forceUpdate bool) (*snotel.Table, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, src DataSource) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		meta, err := src.GetStationsMetadata(c.UserContext(), c.QueryBool("force"))
		if err != nil {
			return errorToFiber(err)
		}
		return c.JSON(meta.Rows())
	})

	v1.Get("/stations/:id/observations", func(c *fiber.Ctx) error {
		var q observationsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stationID := c.Params("id")
		obs, err := src.GetStationData(c.UserContext(), stationID, snotel.StationDataRequest{
			StartDate:   q.Start,
			EndDate:     q.End,
			ForceUpdate: q.Force,
		})
		if err != nil {
			return errorToFiber(err)
		}

		return c.JSON(fiber.Map{
			"station":      stationID,
			"start":        q.Start,
			"end":          q.End,
			"observations": obs.Rows(),
		})
	})

	v1.Get("/observations", func(c *fiber.Ctx) error {
		all, err := src.GetAllStationData(c.UserContext(), c.QueryBool("force"))
		if err != nil {
			return errorToFiber(err)
		}
		return c.JSON(all.Rows())
	})
}

// observationsQuery holds query parameters for the observations
// endpoint. Dates are inclusive bounds in YYYY-MM-DD form.
type observationsQuery struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
	Force bool
}

func (q *observationsQuery) bind(c *fiber.Ctx) error {
	q.Start = c.Query("start")
	q.End = c.Query("end")
	q.Force = c.QueryBool("force")
	return validate.Struct(q)
}

// errorToFiber maps library error kinds onto HTTP statuses: a missing
// upstream resource is the caller's 404, other upstream failures are a
// bad gateway, and everything else is internal.
func errorToFiber(err error) error {
	var fetchErr *snotel.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode == http.StatusNotFound {
			return fiber.NewError(fiber.StatusNotFound, "unknown station")
		}
		return fiber.NewError(fiber.StatusBadGateway, "upstream fetch failed")
	}

	var schemaErr *snotel.SchemaValidationError
	if errors.As(err, &schemaErr) {
		return fiber.NewError(fiber.StatusBadGateway, "upstream data failed validation")
	}

	return fiber.NewError(fiber.StatusInternalServerError, "failed to load station data")
}
