package presenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/trace"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

const internalMessage = "something went wrong"

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type failResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusOf maps an error kind onto its HTTP status.
func StatusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound, domain.KindOutOfRange:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func success(payload echo.Map) echo.Map {
	body := echo.Map{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	return body
}

// OK wraps a successful response.
func OK(c echo.Context, payload echo.Map) error {
	return c.JSON(http.StatusOK, success(payload))
}

func Created(c echo.Context, payload echo.Map) error {
	return c.JSON(http.StatusCreated, success(payload))
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Conditional writes a success body with a weak ETag and answers 304 when
// the client already holds the same representation.
func Conditional(c echo.Context, payload echo.Map) error {
	body, err := json.Marshal(success(payload))
	if err != nil {
		return Error(c, err)
	}
	tag := ETag(body)
	c.Response().Header().Set(headerETag, tag)
	if match := c.Request().Header.Get(headerIfNoneMatch); match != "" && match == tag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// ETag is a weak validator over the serialized representation.
func ETag(body []byte) string {
	return fmt.Sprintf(`W/"%016x"`, xxh3.Hash(body))
}

func BadRequestMessage(c echo.Context, msg string) error {
	return Error(c, &domain.Error{Kind: domain.KindValidation, Message: msg})
}

// Error writes the failure envelope for err. Internal errors are logged and
// replaced by a generic message.
func Error(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		trace.SpanFromContext(c.Request().Context()).RecordError(err)
		slog.ErrorContext(
			c.Request().Context(),
			"request failed",
			slog.String("module", "rest"),
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.JSON(http.StatusInternalServerError, failResponse{
			Status:  "error",
			Kind:    kind.String(),
			Message: internalMessage,
		})
	}

	message := kind.String()
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		message = de.Message
	}
	return c.JSON(StatusOf(kind), failResponse{
		Status:  "fail",
		Kind:    kind.String(),
		Message: message,
	})
}

// HTTPErrorHandler renders router-level errors (unknown route, bad method)
// in the same envelope as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var kind domain.Kind
		switch he.Code {
		case http.StatusNotFound:
			kind = domain.KindNotFound
		case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
			kind = domain.KindValidation
		case http.StatusUnauthorized:
			kind = domain.KindUnauthenticated
		case http.StatusForbidden:
			kind = domain.KindForbidden
		case http.StatusTooManyRequests:
			kind = domain.KindTooManyRequests
		default:
			kind = domain.KindInternal
		}
		if kind != domain.KindInternal {
			message := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
			_ = c.JSON(he.Code, failResponse{Status: "fail", Kind: kind.String(), Message: message})
			return
		}
	}
	_ = Error(c, err)
}
