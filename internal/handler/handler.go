// Package handler holds the HTTP response envelope and error translation
// shared by the storefront and admin handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rossfinn/minimart/internal/domain"
)

// Response is the JSON envelope for every API response.
type Response struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OK writes a success envelope.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{OK: true, Data: data})
}

// Fail writes an error envelope directly. Most handlers just return the
// domain error and let ErrorHandler translate it.
func Fail(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, Response{OK: false, Error: &ErrorBody{Kind: kind, Message: message}})
}

// kindForCode maps domain error codes onto the wire-level error kinds.
func kindForCode(code string) string {
	switch code {
	case domain.EINVALID:
		return "invalid_argument"
	case domain.ENOTFOUND:
		return "not_found"
	case domain.ECONFLICT:
		return "conflict"
	case domain.EUNAUTHORIZED:
		return "unauthorized"
	case domain.EFORBIDDEN:
		return "forbidden"
	default:
		return "storage_failure"
	}
}

// kindForStatus maps a bare HTTP status (router 404s, 405s, health check
// failures) onto the closest wire-level error kind.
func kindForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status >= http.StatusInternalServerError:
		return "storage_failure"
	default:
		return "invalid_argument"
	}
}

// StatusForCode maps domain error codes onto HTTP statuses.
func StatusForCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler translates errors into the JSON envelope. Domain errors keep
// their user-facing message; everything else is reported as a generic
// retryable failure, with the cause logged server-side only.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			_ = Fail(c, he.Code, kindForStatus(he.Code), msg)
			return
		}

		code := domain.ErrorCode(err)
		status := StatusForCode(code)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		_ = Fail(c, status, kindForCode(code), domain.ErrorMessage(err))
	}
}
