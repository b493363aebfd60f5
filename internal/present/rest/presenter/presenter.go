package presenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/internal/telemetry"
)

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func Message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, admindata.Message{Message: msg})
}

// Cached answers with an ETag derived from the body and honours
// If-None-Match.
func Cached(c echo.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return InternalError(c, err)
	}
	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set("ETag", etag)

	if match := c.Request().Header.Get("If-None-Match"); match != "" {
		for _, candidate := range strings.Split(match, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == etag || candidate == "*" {
				return c.NoContent(http.StatusNotModified)
			}
		}
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Error picks the status from the error kind.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrPermission):
		return Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return Unauthorized(c, err.Error())
	default:
		return InternalError(c, err)
	}
}

func BadRequest(c echo.Context, err error) error {
	return BadRequestMessage(c, err.Error())
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.Debug("bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, admindata.Message{Message: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, admindata.Message{Message: msg})
}

func Forbidden(c echo.Context, msg string) error {
	slog.Debug("forbidden", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusForbidden, admindata.Message{Message: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, admindata.Message{Message: msg})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(
		c.Request().Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("traceId", telemetry.TraceID(c.Request().Context())),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusInternalServerError, admindata.Message{Message: "internal server error"})
}
