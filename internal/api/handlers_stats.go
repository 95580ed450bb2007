package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// getStatistics handles GET /api/v1/stats
func (s *Server) getStatistics(c echo.Context) error {
	stats, err := s.storage.GetStatistics(c.Request().Context())
	if err != nil {
		return InternalError("failed to get statistics", err.Error())
	}

	return c.JSON(http.StatusOK, stats)
}
