// Package sqlite persists assembled flow series to a local SQLite store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Store writes flow records to a SQLite database. It implements
// pipeline.SeriesSink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS flow_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reservoir TEXT NOT NULL,
	destination TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	flow_cfs REAL NOT NULL,
	units TEXT NOT NULL,
	value_type TEXT NOT NULL,
	processed_at DATETIME NOT NULL,
	UNIQUE(reservoir, timestamp)
);
CREATE INDEX IF NOT EXISTS idx_flow_reservoir ON flow_records(reservoir);
CREATE INDEX IF NOT EXISTS idx_flow_timestamp ON flow_records(timestamp);`

// NewStore opens (or creates) the database at path and ensures the schema.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open flow store: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create flow store schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// WriteSeries stores every record of the series in one transaction,
// upserting on (reservoir, timestamp). The series' duplicate report is
// retain-and-flag; a unique key cannot hold two rows, so here the later
// reading wins and the collapse is logged.
func (s *Store) WriteSeries(ctx context.Context, series domain.FlowSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flow store transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flow_records(reservoir, destination, timestamp, flow_cfs, units, value_type, processed_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(reservoir, timestamp) DO UPDATE SET
		flow_cfs=excluded.flow_cfs,
		processed_at=excluded.processed_at
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare flow insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range series.Records {
		_, err := stmt.ExecContext(ctx,
			series.Reservoir,
			series.Destination,
			rec.Timestamp,
			rec.TotalFlowCFS,
			series.Units,
			series.ValueType,
			series.ProcessedAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert flow record for %s at %s: %w", series.Reservoir, rec.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flow store transaction: %w", err)
	}

	if len(series.Duplicates) > 0 {
		s.logger.Warn("duplicate timestamps collapsed by unique key, last reading wins",
			"reservoir", series.Reservoir,
			"duplicates", len(series.Duplicates),
		)
	}
	s.logger.Info("flow series stored",
		"reservoir", series.Reservoir,
		"records", len(series.Records),
	)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CountRecords returns the number of stored records for a reservoir.
func (s *Store) CountRecords(ctx context.Context, reservoir string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flow_records WHERE reservoir = ?`, reservoir,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count flow records: %w", err)
	}
	return n, nil
}
