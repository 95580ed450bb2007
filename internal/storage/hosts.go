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

const hostColumns = `id, hostname, ip_address, COALESCE(os, '') AS os, COALESCE(tags, '') AS tags, created_at`

// DeleteResult reports what a host deletion removed.
type DeleteResult struct {
	Tasks   int64
	Changes int64
}

// ListHosts returns every host ordered by identifier ascending.
func (s *Storage) ListHosts(ctx context.Context) ([]models.Host, error) {
	hosts := []models.Host{}
	if err := s.db.SelectContext(ctx, &hosts, `SELECT `+hostColumns+` FROM hosts ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	return hosts, nil
}

// HostChoices returns the selectable hosts for Task and Change forms,
// ordered by hostname ascending.
func (s *Storage) HostChoices(ctx context.Context) ([]models.HostChoice, error) {
	choices := []models.HostChoice{}
	if err := s.db.SelectContext(ctx, &choices, `SELECT id, hostname FROM hosts ORDER BY hostname ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list host choices: %w", err)
	}
	return choices, nil
}

// GetHost retrieves a host by identifier.
func (s *Storage) GetHost(ctx context.Context, id int64) (*models.Host, error) {
	return s.getHost(ctx, s.db, id)
}

func (s *Storage) getHost(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Host, error) {
	var h models.Host
	err := sqlx.GetContext(ctx, q, &h, s.q(`SELECT `+hostColumns+` FROM hosts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get host %d: %w", id, err)
	}
	return &h, nil
}

// CreateHost inserts a new host and returns it with its identifier and
// creation timestamp assigned.
func (s *Storage) CreateHost(ctx context.Context, f models.HostFields) (*models.Host, error) {
	var created *models.Host
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, s.q(`
			INSERT INTO hosts (hostname, ip_address, os, tags, created_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`),
			f.Hostname, f.IPAddress, nullable(f.OS), nullable(f.Tags), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert host: %w", err)
		}

		created, err = s.getHost(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("host", "create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("host created", "host_id", created.ID, "hostname", created.Hostname)
	return created, nil
}

// UpdateHost replaces the mutable fields of a host. The identifier and
// creation timestamp are left untouched.
func (s *Storage) UpdateHost(ctx context.Context, id int64, f models.HostFields) (*models.Host, error) {
	var updated *models.Host
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE hosts SET hostname = ?, ip_address = ?, os = ?, tags = ?
			WHERE id = ?`),
			f.Hostname, f.IPAddress, nullable(f.OS), nullable(f.Tags), id)
		if err != nil {
			return fmt.Errorf("update host %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		updated, err = s.getHost(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("host", "update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("host updated", "host_id", id)
	return updated, nil
}

// DeleteHost removes a host together with every Task and Change it owns,
// as one atomic operation.
func (s *Storage) DeleteHost(ctx context.Context, id int64) (DeleteResult, error) {
	var result DeleteResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.hostExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE host_id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete tasks of host %d: %w", id, err)
		}
		result.Tasks, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, s.q(`DELETE FROM changes WHERE host_id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete changes of host %d: %w", id, err)
		}
		result.Changes, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM hosts WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete host %d: %w", id, err)
		}
		return nil
	})
	metrics.ObserveMutation("host", "delete", err)
	if err != nil {
		return DeleteResult{}, err
	}

	s.logger.Info("host deleted", "host_id", id, "tasks", result.Tasks, "changes", result.Changes)
	return result, nil
}
