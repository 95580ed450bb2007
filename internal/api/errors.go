package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	FieldError map[string][]string    `json:"field_errors,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

func NotFoundError(resource string, id int64) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"id": id},
	}
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, details)
}

// PageRenderer renders an HTML error page for browser requests.
type PageRenderer func(c echo.Context, code int, message string) error

// NewHTTPErrorHandler returns an echo error handler. Requests for the JSON
// surface (/api/, /health, or an Accept header asking for JSON) get an
// APIError body; everything else gets the HTML page from render.
func NewHTTPErrorHandler(render PageRenderer, logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(err error, c echo.Context) {
		// Don't send response if already sent
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		code := http.StatusInternalServerError

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			apiErr = &APIError{
				Code:    code,
				Message: getHTTPMessage(code),
				Details: fmt.Sprintf("%v", he.Message),
			}
		} else if ae, ok := err.(*APIError); ok {
			apiErr = ae
			code = ae.Code
		} else {
			apiErr = &APIError{
				Code:    code,
				Message: "Internal server error",
				Details: err.Error(),
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", code,
				"error", err,
			)
		}

		// Don't expose internal errors in production
		if code == http.StatusInternalServerError && !c.Echo().Debug {
			apiErr.Details = "An internal error occurred. Please try again later."
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else if render == nil || wantsJSON(c) {
			err = c.JSON(code, apiErr)
		} else {
			err = render(c, code, apiErr.Details)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api/") || path == "/health" {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:          "Bad request",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Resource not found",
		http.StatusMethodNotAllowed:    "Method not allowed",
		http.StatusUnprocessableEntity: "Unprocessable entity",
		http.StatusTooManyRequests:     "Too many requests",
		http.StatusInternalServerError: "Internal server error",
		http.StatusServiceUnavailable:  "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
