package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-assistant/internal/apperrors"
	"github.com/i474232898/weather-assistant/internal/common"
	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/weather"
)

var validate = validator.New()

const requestIDHeader = "X-Request-ID"

// RouteConfig carries the optional collaborators of the HTTP layer.
type RouteConfig struct {
	// ProbeLocation is reported on /health when provider probing is enabled.
	ProbeLocation string
	Logger        *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, cfg RouteConfig) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app.Use(requestID)

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "ok",
			"service": "weather-assistant",
		}
		if cfg.ProbeLocation != "" {
			if probe, ok := service.LatestProbe(cfg.ProbeLocation); ok {
				body["probe"] = probe
			}
		}
		return c.JSON(body)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/summary", func(c *fiber.Ctx) error {
		var q summaryQuery
		if err := q.bind(c); err != nil {
			return badRequest(err)
		}
		if err := validate.Struct(q); err != nil {
			return badRequest(err)
		}

		sum, err := service.Summary(c.UserContext(), q.toRequest())
		if err != nil {
			log.Warn("summary failed",
				zap.String("request_id", requestIDOf(c)),
				zap.String("location", q.Location),
				zap.String("kind", q.Kind),
				zap.Error(err),
			)
			return toAPIError(err)
		}
		return c.JSON(sum)
	})

	v1.Get("/probes/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return badRequest(err)
		}

		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		results, err := service.ProbeHistory(req.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe history")
		}
		if results == nil {
			return fiber.NewError(fiber.StatusNotFound, "provider probing is disabled")
		}

		return c.JSON(fiber.Map{
			"location": req.Location,
			"from":     req.From,
			"to":       req.To,
			"probes":   results,
		})
	})
}

// ErrorHandler renders every error as {error, code, message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := ""
	var apiErr *APIError
	var fe *fiber.Error
	switch {
	case errors.As(err, &apiErr):
		status, code = apiErr.Status, apiErr.Code
	case errors.As(err, &fe):
		status = fe.Code
	}

	body := fiber.Map{
		"error":   true,
		"message": err.Error(),
	}
	if code != "" {
		body["code"] = code
	}
	return c.Status(status).JSON(body)
}

// APIError is an error with an HTTP status and a stable machine-readable code.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func badRequest(err error) error {
	return &APIError{Status: fiber.StatusBadRequest, Code: apperrors.CodeInvalidInput, Message: err.Error()}
}

// toAPIError maps domain failures onto HTTP statuses and user-facing messages.
func toAPIError(err error) error {
	switch {
	case apperrors.HasCode(err, apperrors.CodeInvalidInput):
		return badRequest(err)
	case apperrors.HasCode(err, apperrors.CodeLocationNotFound):
		return &APIError{Status: fiber.StatusNotFound, Code: apperrors.CodeLocationNotFound,
			Message: "I couldn't find that location. Please check the spelling and try again."}
	case apperrors.HasCode(err, apperrors.CodeTransientFailure), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Status: fiber.StatusGatewayTimeout, Code: apperrors.CodeTransientFailure,
			Message: "The weather service is not responding right now. Please try again in a moment."}
	case apperrors.HasCode(err, apperrors.CodeContractViolation):
		return &APIError{Status: fiber.StatusBadGateway, Code: apperrors.CodeContractViolation,
			Message: "The weather service returned data I couldn't understand."}
	case apperrors.HasCode(err, apperrors.CodePermanentFailure):
		return &APIError{Status: fiber.StatusBadGateway, Code: apperrors.CodePermanentFailure,
			Message: "The weather service returned an error."}
	case apperrors.HasCode(err, apperrors.CodeServiceUnavailable):
		return &APIError{Status: fiber.StatusServiceUnavailable, Code: apperrors.CodeServiceUnavailable,
			Message: "Weather service is currently unavailable."}
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build weather summary")
	}
}

func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}

// summaryQuery holds query parameters for the summary endpoint.
type summaryQuery struct {
	Location string `validate:"required,max=200"`
	Kind     string `validate:"required,oneof=current forecast uv air_quality wind precipitation sunrise_sunset comparison local_time alerts"`
	Period   string `validate:"required,oneof=today tomorrow"`
	Days     int    `validate:"min=0,max=5"`
}

func (q *summaryQuery) bind(c *fiber.Ctx) error {
	q.Location = strings.TrimSpace(c.Query("location"))
	q.Kind = strings.ToLower(strings.TrimSpace(c.Query("kind", string(weather.KindCurrent))))
	q.Period = common.PeriodKeyword(c.Query("period"))

	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("days must be an integer")
		}
		q.Days = days
	}
	return nil
}

func (q summaryQuery) toRequest() weather.Request {
	return weather.Request{
		Location:    q.Location,
		Kind:        weather.Kind(q.Kind),
		Period:      weather.Period(q.Period),
		HorizonDays: q.Days,
	}
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	Location string    `validate:"required"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Location = strings.TrimSpace(c.Query("location"))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
