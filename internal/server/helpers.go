package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"crafthub/internal/middleware"
	"crafthub/internal/models"
	"crafthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already committed the response. Handlers
// return nil when they see it.
var errResponseWritten = errors.New("response already written")

// statusFor maps an AppError code to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders err in the standard envelope. Anything that is not a
// client error is logged and reported as an internal error.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeInternal {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// respond writes {"success": true, key: value} with the given status.
func respond(c *fiber.Ctx, status int, key string, value any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		key:       value,
	})
}

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToLower(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads limit/offset; the service layer applies defaults and caps.
func parsePage(c *fiber.Ctx) service.Page {
	return service.Page{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
}

// queryFilters parses the optional typed filters of the post listing. Every
// malformed value is reported together.
type queryFilters struct {
	problems []string
}

func (q *queryFilters) uintParam(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		q.problems = append(q.problems, key+" must be a positive integer")
		return nil
	}
	id := uint(v)
	return &id
}

func (q *queryFilters) boolParam(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.problems = append(q.problems, key+" must be true or false")
		return nil
	}
	return &v
}

// timeParam accepts RFC 3339 timestamps or plain dates. A plain date is
// midnight UTC, or the last instant of that day when upper is set, so an
// inclusive upper bound covers the whole day.
func (q *queryFilters) timeParam(c *fiber.Ctx, key string, upper bool) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t
	}
	q.problems = append(q.problems, key+" must be an RFC 3339 timestamp or YYYY-MM-DD date")
	return nil
}

func (q *queryFilters) err() error {
	if len(q.problems) == 0 {
		return nil
	}
	return models.NewValidationError(q.problems...)
}

func notFound(resource string, id uint) error {
	return models.NewNotFoundError(resource, id)
}

func invalidBody() error {
	return models.NewValidationError("Invalid request body")
}
