package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunMetric records timing for a single pipeline stage, such as a plan build
// or a shopping optimization.
type RunMetric struct {
	Stage      string
	DurationMS int64
	ItemCount  int
	CreatedAt  time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m RunMetric) error {
	ts := m.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_metrics (stage, duration_ms, item_count, created_at) VALUES (?, ?, ?, ?)`,
		m.Stage, m.DurationMS, m.ItemCount, ts.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// ListRecent returns the most recent metrics, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]RunMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, duration_ms, item_count, created_at FROM run_metrics ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var results []RunMetric
	for rows.Next() {
		var m RunMetric
		var created string
		if err := rows.Scan(&m.Stage, &m.DurationMS, &m.ItemCount, &created); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			m.CreatedAt = ts
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns the number of rows deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM run_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
