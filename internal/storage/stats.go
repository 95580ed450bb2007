package storage

import (
	"context"
	"fmt"
)

// Statistics holds record totals shown on the landing page.
type Statistics struct {
	Hosts   int `json:"hosts" db:"hosts"`
	Tasks   int `json:"tasks" db:"tasks"`
	Changes int `json:"changes" db:"changes"`
}

// GetStatistics counts the records of each type.
func (s *Storage) GetStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM hosts) AS hosts,
			(SELECT COUNT(*) FROM tasks) AS tasks,
			(SELECT COUNT(*) FROM changes) AS changes`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return &stats, nil
}
