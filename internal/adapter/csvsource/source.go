// Package csvsource reads workbook CSV exports as raw tables. The gate-ops
// workbook is exported one sheet per file: <reservoir>_gate_ops.csv for the
// operation log and <reservoir>_rating_curve.csv for the rating table.
package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
)

// Source implements pipeline.TableSource over a directory of CSV exports.
type Source struct {
	dir    string
	logger *slog.Logger
}

// New creates a Source rooted at dir.
func New(dir string, logger *slog.Logger) *Source {
	return &Source{dir: dir, logger: logger}
}

// GateLog reads the reservoir's gate-operation export verbatim: headers as
// the first record, everything else as data rows. No repair happens here;
// the raw two-level header mess is the domain layer's problem.
func (s *Source) GateLog(_ context.Context, res domain.Reservoir) (domain.RawTable, error) {
	rows, err := s.readCSV(fileSlug(res.Name) + "_gate_ops.csv")
	if err != nil {
		return domain.RawTable{}, err
	}
	if len(rows) == 0 {
		return domain.RawTable{}, fmt.Errorf("gate log for %s is empty", res.Name)
	}
	return domain.RawTable{Headers: rows[0], Rows: rows[1:]}, nil
}

// RatingCurve reads the reservoir's rating table, keeping rows whose d and C
// both parse. Rows that fail to parse are skipped, not fatal; the caller
// decides whether what's left constitutes a usable curve.
func (s *Source) RatingCurve(_ context.Context, res domain.Reservoir) ([]domain.RatingEntry, error) {
	rows, err := s.readCSV(fileSlug(res.Name) + "_rating_curve.csv")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rating curve for %s is empty", res.Name)
	}

	dCol, cCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "d":
			dCol = i
		case "C":
			cCol = i
		}
	}
	if dCol < 0 || cCol < 0 {
		return nil, fmt.Errorf("rating curve for %s is missing the d or C column", res.Name)
	}

	var entries []domain.RatingEntry
	skipped := 0
	for _, row := range rows[1:] {
		d, errD := parseCell(row, dCol)
		c, errC := parseCell(row, cCol)
		if errD != nil || errC != nil {
			skipped++
			continue
		}
		entries = append(entries, domain.RatingEntry{D: d, C: c})
	}
	if skipped > 0 {
		s.logger.Warn("rating curve rows skipped", "reservoir", res.Name, "skipped", skipped)
	}
	return entries, nil
}

func (s *Source) readCSV(name string) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Hand-edited sheets export ragged rows; length checks happen downstream.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func parseCell(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("missing cell %d", col)
	}
	return strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
}

func fileSlug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
