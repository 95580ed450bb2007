package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"infratrack.io/infratrack/internal/storage"
	"infratrack.io/infratrack/internal/validation"
)

func changeInput(c echo.Context) validation.ChangeInput {
	return validation.ChangeInput{
		HostID:  c.FormValue("host_id"),
		Summary: c.FormValue("summary"),
	}
}

// ListChanges renders the change log page.
func (h *Handler) ListChanges(c echo.Context) error {
	changes, err := h.store.ListChanges(c.Request().Context())
	if err != nil {
		return err
	}

	p := newPage(c, "Changes", "changes")
	p.Changes = changes
	return h.render(c, http.StatusOK, "changes", p)
}

// AddChange renders the log change form and handles its submission.
func (h *Handler) AddChange(c echo.Context) error {
	ctx := c.Request().Context()

	choices, err := h.store.HostChoices(ctx)
	if err != nil {
		return err
	}

	p := newPage(c, "Log Change", "changes")
	p.Action = "/changes/add"
	p.Choices = choices

	if !isPost(c) {
		return h.render(c, http.StatusOK, "change_form", p)
	}

	p.Change = changeInput(c)
	fields, result := h.validator.ValidateChange(p.Change, choices)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "change_form", p)
	}

	if _, err := h.store.CreateChange(ctx, fields); err != nil {
		if errors.Is(err, storage.ErrHostNotFound) {
			p.Errors["host_id"] = []string{"Not a valid choice."}
			return h.render(c, http.StatusUnprocessableEntity, "change_form", p)
		}
		h.logger.Error("failed to create change", "entity", "change", "op", "create", "host_id", fields.HostID, "error", err)
		p.Notice = "Error logging change. Please try again."
		return h.render(c, http.StatusInternalServerError, "change_form", p)
	}

	return h.redirect(c, "/changes", "Change logged successfully.")
}

// EditChange renders the edit change form and handles its submission.
func (h *Handler) EditChange(c echo.Context) error {
	id, err := pathID(c, "Change")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	change, err := h.store.GetChange(ctx, id)
	if err != nil {
		return notFound(err, "Change")
	}

	choices, err := h.store.HostChoices(ctx)
	if err != nil {
		return err
	}

	p := newPage(c, "Edit Change", "changes")
	p.Action = fmt.Sprintf("/changes/edit/%d", id)
	p.Choices = choices

	if !isPost(c) {
		p.Change = validation.ChangeInput{
			HostID:  strconv.FormatInt(change.HostID, 10),
			Summary: change.Summary,
		}
		return h.render(c, http.StatusOK, "change_form", p)
	}

	p.Change = changeInput(c)
	fields, result := h.validator.ValidateChange(p.Change, choices)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "change_form", p)
	}

	if _, err := h.store.UpdateChange(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return notFound(err, "Change")
		case errors.Is(err, storage.ErrHostNotFound):
			p.Errors["host_id"] = []string{"Not a valid choice."}
			return h.render(c, http.StatusUnprocessableEntity, "change_form", p)
		}
		h.logger.Error("failed to update change", "entity", "change", "op", "update", "id", id, "error", err)
		p.Notice = "Error updating change. Please try again."
		return h.render(c, http.StatusInternalServerError, "change_form", p)
	}

	return h.redirect(c, "/changes", "Change updated successfully.")
}

// DeleteChange removes a single change entry.
func (h *Handler) DeleteChange(c echo.Context) error {
	id, err := pathID(c, "Change")
	if err != nil {
		return err
	}

	if err := h.store.DeleteChange(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(err, "Change")
		}
		h.logger.Error("failed to delete change", "entity", "change", "op", "delete", "id", id, "error", err)
		return h.redirect(c, "/changes", "Error deleting change. Please try again.")
	}

	return h.redirect(c, "/changes", "Change deleted.")
}
