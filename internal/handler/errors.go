package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
)

// ErrorHandler is the single place where errors returned by handlers and
// middleware become HTTP responses. Every error body is {"error": message}.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"error": msg})
		}
		if werr != nil {
			log.Error("write error response", "error", werr)
		}
	}
}

// StatusFor maps err to a status code and client-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, apperr.Message(err)
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, apperr.Message(err)
	case errors.Is(err, apperr.ErrAuth):
		return http.StatusUnauthorized, apperr.Message(err)
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, apperr.Message(err)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return http.StatusNotFound, "Endpoint not found"
		case http.StatusMethodNotAllowed:
			return http.StatusMethodNotAllowed, "Method not allowed"
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	return http.StatusInternalServerError, err.Error()
}

// decodeBody reads a JSON request body into dst regardless of the declared
// content type. An empty body leaves dst untouched.
func decodeBody(c echo.Context, dst any) error {
	err := c.Echo().JSONSerializer.Deserialize(c, dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("Invalid JSON body")
}
