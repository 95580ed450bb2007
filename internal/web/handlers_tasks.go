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

func taskInput(c echo.Context) validation.TaskInput {
	return validation.TaskInput{
		HostID:      c.FormValue("host_id"),
		Description: c.FormValue("description"),
	}
}

// ListTasks renders the tasks list page.
func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.store.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}

	p := newPage(c, "Tasks", "tasks")
	p.Tasks = tasks
	return h.render(c, http.StatusOK, "tasks", p)
}

// AddTask renders the add task form and handles its submission.
func (h *Handler) AddTask(c echo.Context) error {
	ctx := c.Request().Context()

	choices, err := h.store.HostChoices(ctx)
	if err != nil {
		return err
	}

	p := newPage(c, "Add Task", "tasks")
	p.Action = "/tasks/add"
	p.Choices = choices

	if !isPost(c) {
		return h.render(c, http.StatusOK, "task_form", p)
	}

	p.Task = taskInput(c)
	fields, result := h.validator.ValidateTask(p.Task, choices)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "task_form", p)
	}

	if _, err := h.store.CreateTask(ctx, fields); err != nil {
		if errors.Is(err, storage.ErrHostNotFound) {
			p.Errors["host_id"] = []string{"Not a valid choice."}
			return h.render(c, http.StatusUnprocessableEntity, "task_form", p)
		}
		h.logger.Error("failed to create task", "entity", "task", "op", "create", "host_id", fields.HostID, "error", err)
		p.Notice = "Error adding task. Please try again."
		return h.render(c, http.StatusInternalServerError, "task_form", p)
	}

	return h.redirect(c, "/tasks", "Task added successfully.")
}

// EditTask renders the edit task form and handles its submission.
func (h *Handler) EditTask(c echo.Context) error {
	id, err := pathID(c, "Task")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	task, err := h.store.GetTask(ctx, id)
	if err != nil {
		return notFound(err, "Task")
	}

	choices, err := h.store.HostChoices(ctx)
	if err != nil {
		return err
	}

	p := newPage(c, "Edit Task", "tasks")
	p.Action = fmt.Sprintf("/tasks/edit/%d", id)
	p.Choices = choices

	if !isPost(c) {
		p.Task = validation.TaskInput{
			HostID:      strconv.FormatInt(task.HostID, 10),
			Description: task.Description,
		}
		return h.render(c, http.StatusOK, "task_form", p)
	}

	p.Task = taskInput(c)
	fields, result := h.validator.ValidateTask(p.Task, choices)
	if !result.Valid {
		p.Errors = result.FieldErrors()
		return h.render(c, http.StatusUnprocessableEntity, "task_form", p)
	}

	if _, err := h.store.UpdateTask(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return notFound(err, "Task")
		case errors.Is(err, storage.ErrHostNotFound):
			p.Errors["host_id"] = []string{"Not a valid choice."}
			return h.render(c, http.StatusUnprocessableEntity, "task_form", p)
		}
		h.logger.Error("failed to update task", "entity", "task", "op", "update", "id", id, "error", err)
		p.Notice = "Error updating task. Please try again."
		return h.render(c, http.StatusInternalServerError, "task_form", p)
	}

	return h.redirect(c, "/tasks", "Task updated successfully.")
}

// DeleteTask removes a single task.
func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := pathID(c, "Task")
	if err != nil {
		return err
	}

	if err := h.store.DeleteTask(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(err, "Task")
		}
		h.logger.Error("failed to delete task", "entity", "task", "op", "delete", "id", id, "error", err)
		return h.redirect(c, "/tasks", "Error deleting task. Please try again.")
	}

	return h.redirect(c, "/tasks", "Task deleted.")
}
