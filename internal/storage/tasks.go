package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"infratrack.io/infratrack/internal/metrics"
	"infratrack.io/infratrack/models"
)

const taskSelect = `
	SELECT t.id, t.host_id, t.description, t.performed_at, h.hostname
	FROM tasks t JOIN hosts h ON h.id = t.host_id`

// ListTasks returns every task ordered by identifier ascending, each with
// its host's hostname filled in.
func (s *Storage) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, taskSelect+` ORDER BY t.id ASC`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a task by identifier.
func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return s.getTask(ctx, s.db, id)
}

func (s *Storage) getTask(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Task, error) {
	var t models.Task
	err := sqlx.GetContext(ctx, q, &t, s.q(taskSelect+` WHERE t.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// CreateTask records a task against an existing host.
func (s *Storage) CreateTask(ctx context.Context, f models.TaskFields) (*models.Task, error) {
	var created *models.Task
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.hostExists(ctx, tx, f.HostID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrHostNotFound
		}

		var id int64
		err = tx.GetContext(ctx, &id, s.q(`
			INSERT INTO tasks (host_id, description, performed_at)
			VALUES (?, ?, ?)
			RETURNING id`),
			f.HostID, f.Description, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		created, err = s.getTask(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("task", "create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", created.ID, "host_id", created.HostID)
	return created, nil
}

// UpdateTask replaces a task's host reference and description. The
// performed-at timestamp is never changed.
func (s *Storage) UpdateTask(ctx context.Context, id int64, f models.TaskFields) (*models.Task, error) {
	var updated *models.Task
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.hostExists(ctx, tx, f.HostID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrHostNotFound
		}

		res, err := tx.ExecContext(ctx, s.q(`UPDATE tasks SET host_id = ?, description = ? WHERE id = ?`),
			f.HostID, f.Description, id)
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		updated, err = s.getTask(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("task", "update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated", "task_id", id)
	return updated, nil
}

// DeleteTask removes a single task.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	metrics.ObserveMutation("task", "delete", err)
	if err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", id)
	return nil
}
