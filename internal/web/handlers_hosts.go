package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"infratrack.io/infratrack/internal/storage"
	"infratrack.io/infratrack/internal/validation"
)

func hostInput(c echo.Context) validation.HostInput {
	return validation.HostInput{
		Hostname:  c.FormValue("hostname"),
		IPAddress: c.FormValue("ip_address"),
		OS:        c.FormValue("os"),
		Tags:      c.FormValue("tags"),
	}
}

// ListHosts renders the hosts list page.
func (h *Handler) ListHosts(c echo.Context) error {
	hosts, err := h.store.ListHosts(c.Request().Context())
	if err != nil {
		return err
	}

	p := newPage(c, "Hosts", "hosts")
	p.Hosts = hosts
	return h.render(c, http.StatusOK, "hosts", p)
}

// AddHost renders the add host form and handles its submission.
func (h *Handler) AddHost(c echo.Context) error {
	p := newPage(c, "Add Host", "hosts")
	p.Action = "/hosts/add"

	if !isPost(c) {
		return h.render(c, http.StatusOK, "host_form", p)
	}

	p.Host = hostInput(c)
	fields, result := h.validator.ValidateHost(p.Host)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "host_form", p)
	}

	host, err := h.store.CreateHost(c.Request().Context(), fields)
	if err != nil {
		h.logger.Error("failed to create host", "entity", "host", "op", "create", "error", err)
		p.Notice = "Error adding host. Please try again."
		return h.render(c, http.StatusInternalServerError, "host_form", p)
	}

	h.logger.Debug("host added via web", "host_id", host.ID)
	return h.redirect(c, "/hosts", "Host added successfully.")
}

// EditHost renders the edit host form and handles its submission.
func (h *Handler) EditHost(c echo.Context) error {
	id, err := pathID(c, "Host")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	host, err := h.store.GetHost(ctx, id)
	if err != nil {
		return notFound(err, "Host")
	}

	p := newPage(c, "Edit Host "+host.Hostname, "hosts")
	p.Action = fmt.Sprintf("/hosts/edit/%d", id)

	if !isPost(c) {
		p.Host = validation.HostInput{
			Hostname:  host.Hostname,
			IPAddress: host.IPAddress,
			OS:        host.OS,
			Tags:      host.Tags,
		}
		return h.render(c, http.StatusOK, "host_form", p)
	}

	p.Host = hostInput(c)
	fields, result := h.validator.ValidateHost(p.Host)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "host_form", p)
	}

	if _, err := h.store.UpdateHost(ctx, id, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(err, "Host")
		}
		h.logger.Error("failed to update host", "entity", "host", "op", "update", "id", id, "error", err)
		p.Notice = "Error updating host. Please try again."
		return h.render(c, http.StatusInternalServerError, "host_form", p)
	}

	return h.redirect(c, "/hosts", "Host updated successfully.")
}

// DeleteHost removes a host and every task and change it owns.
func (h *Handler) DeleteHost(c echo.Context) error {
	id, err := pathID(c, "Host")
	if err != nil {
		return err
	}

	res, err := h.store.DeleteHost(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(err, "Host")
		}
		h.logger.Error("failed to delete host", "entity", "host", "op", "delete", "id", id, "error", err)
		return h.redirect(c, "/hosts", "Error deleting host. Please try again.")
	}

	h.logger.Debug("host deleted via web", "host_id", id, "tasks", res.Tasks, "changes", res.Changes)
	return h.redirect(c, "/hosts", "Host and related records deleted.")
}
