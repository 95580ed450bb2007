package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"infratrack.io/infratrack/internal/storage"
)

// listHosts handles GET /api/v1/hosts
func (s *Server) listHosts(c echo.Context) error {
	hosts, err := s.storage.ListHosts(c.Request().Context())
	if err != nil {
		return InternalError("failed to list hosts", err.Error())
	}

	return c.JSON(http.StatusOK, HostsResponse{
		Count: len(hosts),
		Hosts: hosts,
	})
}

// getHost handles GET /api/v1/hosts/:id
func (s *Server) getHost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return BadRequestError("invalid host id", c.Param("id"))
	}

	host, err := s.storage.GetHost(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return NotFoundError("Host", id)
	}
	if err != nil {
		return InternalError("failed to get host", err.Error())
	}

	return c.JSON(http.StatusOK, host)
}

// listTasks handles GET /api/v1/tasks
func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.storage.ListTasks(c.Request().Context())
	if err != nil {
		return InternalError("failed to list tasks", err.Error())
	}

	return c.JSON(http.StatusOK, TasksResponse{
		Count: len(tasks),
		Tasks: tasks,
	})
}

// listChanges handles GET /api/v1/changes
func (s *Server) listChanges(c echo.Context) error {
	changes, err := s.storage.ListChanges(c.Request().Context())
	if err != nil {
		return InternalError("failed to list changes", err.Error())
	}

	return c.JSON(http.StatusOK, ChangesResponse{
		Count:   len(changes),
		Changes: changes,
	})
}
