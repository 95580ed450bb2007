package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// CSRFContextKey is the echo context key under which the CSRF middleware
// stores the current token.
const CSRFContextKey = "csrf"

// pathID parses the :id route parameter. Anything other than a positive
// integer is reported as not found.
func pathID(c echo.Context, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return id, nil
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}

func isPost(c echo.Context) bool {
	return c.Request().Method == http.MethodPost
}
