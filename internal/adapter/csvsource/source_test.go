package csvsource

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lawtonka = domain.Reservoir{
	Name:                    "Lawtonka",
	SpillwayInvertElevation: 1335.55,
	GateLength:              20.0,
	GateBlockStart:          4,
	GateCount:               2,
}

func TestGateLog(t *testing.T) {
	src := New("testdata", slog.Default())

	table, err := src.GateLog(context.Background(), lawtonka)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Time", "Operator", "Lake Elevation", "Gates", "", "Notes"}, table.Headers)
	require.Len(t, table.Rows, 5)
	assert.Equal(t, "Gate 1", table.Rows[0][4], "the embedded gate-header row is delivered untouched")
	assert.Equal(t, `6"`, table.Rows[2][4], "inch quotes survive CSV decoding")
}

func TestGateLogMissingFile(t *testing.T) {
	src := New("testdata", slog.Default())

	_, err := src.GateLog(context.Background(), domain.Reservoir{Name: "Elmer Thomas"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elmer_thomas_gate_ops.csv")
}

func TestRatingCurve(t *testing.T) {
	src := New("testdata", slog.Default())

	entries, err := src.RatingCurve(context.Background(), lawtonka)
	require.NoError(t, err)

	// The n/a row coerces away; three usable entries remain.
	assert.Equal(t, []domain.RatingEntry{
		{D: 0.25, C: 0.60},
		{D: 0.50, C: 0.62},
		{D: 0.75, C: 0.63},
	}, entries)
}

func TestRatingCurveFeedsDomainCurve(t *testing.T) {
	src := New("testdata", slog.Default())

	entries, err := src.RatingCurve(context.Background(), lawtonka)
	require.NoError(t, err)

	curve, err := domain.NewRatingCurve(lawtonka, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, curve.Len())
}

func TestFileSlug(t *testing.T) {
	assert.Equal(t, "lawtonka", fileSlug("Lawtonka"))
	assert.Equal(t, "elmer_thomas", fileSlug("Elmer Thomas"))
}
