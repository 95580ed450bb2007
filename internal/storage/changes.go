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

const changeSelect = `
	SELECT c.id, c.host_id, c.summary, c.changed_at, h.hostname
	FROM changes c JOIN hosts h ON h.id = c.host_id`

// ListChanges returns every change ordered by identifier ascending, each with
// its host's hostname filled in.
func (s *Storage) ListChanges(ctx context.Context) ([]models.Change, error) {
	changes := []models.Change{}
	if err := s.db.SelectContext(ctx, &changes, changeSelect+` ORDER BY c.id ASC`); err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return changes, nil
}

// GetChange retrieves a change by identifier.
func (s *Storage) GetChange(ctx context.Context, id int64) (*models.Change, error) {
	return s.getChange(ctx, s.db, id)
}

func (s *Storage) getChange(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Change, error) {
	var c models.Change
	err := sqlx.GetContext(ctx, q, &c, s.q(changeSelect+` WHERE c.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get change %d: %w", id, err)
	}
	return &c, nil
}

// CreateChange logs a change against an existing host.
func (s *Storage) CreateChange(ctx context.Context, f models.ChangeFields) (*models.Change, error) {
	var created *models.Change
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
			INSERT INTO changes (host_id, summary, changed_at)
			VALUES (?, ?, ?)
			RETURNING id`),
			f.HostID, f.Summary, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert change: %w", err)
		}

		created, err = s.getChange(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("change", "create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("change created", "change_id", created.ID, "host_id", created.HostID)
	return created, nil
}

// UpdateChange replaces a change's host reference and summary. The
// changed-at timestamp is never changed.
func (s *Storage) UpdateChange(ctx context.Context, id int64, f models.ChangeFields) (*models.Change, error) {
	var updated *models.Change
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.hostExists(ctx, tx, f.HostID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrHostNotFound
		}

		res, err := tx.ExecContext(ctx, s.q(`UPDATE changes SET host_id = ?, summary = ? WHERE id = ?`),
			f.HostID, f.Summary, id)
		if err != nil {
			return fmt.Errorf("update change %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		updated, err = s.getChange(ctx, tx, id)
		return err
	})
	metrics.ObserveMutation("change", "update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("change updated", "change_id", id)
	return updated, nil
}

// DeleteChange removes a single change entry.
func (s *Storage) DeleteChange(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM changes WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete change %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	metrics.ObserveMutation("change", "delete", err)
	if err != nil {
		return err
	}

	s.logger.Info("change deleted", "change_id", id)
	return nil
}
