package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lawtonkaCurve(t *testing.T) *RatingCurve {
	t.Helper()
	return testCurve(t, []RatingEntry{
		{D: 0.25, C: 0.60},
		{D: 0.50, C: 0.62},
		{D: 0.75, C: 0.63},
	})
}

func TestGateFlowClosedGateSkipsLookup(t *testing.T) {
	// A nil curve proves no lookup happens: any lookup would panic.
	q, fallback := GateFlow(0, 1337.00, nil)
	assert.Zero(t, q)
	assert.Nil(t, fallback)

	q, fallback = GateFlow(-0.5, 1337.00, nil)
	assert.Zero(t, q)
	assert.Nil(t, fallback)
}

func TestGateFlowOpeningExceedsHead(t *testing.T) {
	curve := lawtonkaCurve(t)

	// H1 = 0.45 ft, opening 0.5 ft, so H2 < 0: no discharge through the gate.
	q, fallback := GateFlow(0.5, 1336.00, curve)
	assert.Zero(t, q)
	assert.Nil(t, fallback, "the short-circuit fires before any lookup")
}

func TestGateFlowLakeBelowInvert(t *testing.T) {
	curve := lawtonkaCurve(t)

	q, _ := GateFlow(0.5, 1335.00, curve)
	assert.Zero(t, q)
	assert.False(t, q != q, "negative head must not produce NaN")
}

func TestGateFlowKnownDischarge(t *testing.T) {
	curve := lawtonkaCurve(t)

	// Lawtonka, lake at 1337.00: H1 = 1.45, opening 0.5 ft gives H2 = 0.95
	// and C = 0.62, so Q = (2/3)·√64.4·0.62·20·(1.45^1.5 − 0.95^1.5) ≈ 54.40.
	q, fallback := GateFlow(0.5, 1337.00, curve)
	assert.InDelta(t, 54.40, q, 0.01)
	assert.Nil(t, fallback)
}

func TestGateFlowMonotonicInElevation(t *testing.T) {
	curve := lawtonkaCurve(t)

	prev := 0.0
	for elev := 1336.10; elev < 1339.0; elev += 0.1 {
		q, _ := GateFlow(0.5, elev, curve)
		assert.GreaterOrEqual(t, q, prev, "flow must not decrease as the lake rises (elev %v)", elev)
		prev = q
	}
}

func TestTotalFlow(t *testing.T) {
	curve := lawtonkaCurve(t)

	obs := Observation{
		Timestamp:     mustTimestamp(t, "2020-05-01", "800"),
		LakeElevation: 1337.00,
		GateOpenings:  []float64{0.5, 0, 0},
	}

	total, fallbacks := TotalFlow(obs, curve)
	assert.Equal(t, 54.40, total)
	assert.Empty(t, fallbacks)
}

func TestTotalFlowAllGatesClosed(t *testing.T) {
	curve := lawtonkaCurve(t)

	obs := Observation{LakeElevation: 1337.00, GateOpenings: []float64{0, 0, 0}}
	total, fallbacks := TotalFlow(obs, curve)
	assert.Zero(t, total)
	assert.Empty(t, fallbacks)
}

func TestTotalFlowCollectsFallbacks(t *testing.T) {
	curve := lawtonkaCurve(t)

	obs := Observation{
		LakeElevation: 1338.00,
		GateOpenings:  []float64{0.42, 0.33, 0},
	}

	total, fallbacks := TotalFlow(obs, curve)
	assert.Positive(t, total)
	require.Len(t, fallbacks, 2)
	assert.Equal(t, 0.42, fallbacks[0].Requested)
	assert.Equal(t, 0.50, fallbacks[0].Substituted)
	assert.Equal(t, 0.33, fallbacks[1].Requested)
	assert.Equal(t, 0.25, fallbacks[1].Substituted)
}

func TestHeadPowNegativeBase(t *testing.T) {
	assert.Zero(t, headPow(-1.0))
	assert.Zero(t, headPow(0))
	assert.InDelta(t, 1.0, headPow(1.0), 1e-12)
}

func mustTimestamp(t *testing.T, date, clockStr string) time.Time {
	t.Helper()
	table := repairedSheet([][]string{{date, clockStr, "", "1337.00", "0", "0", "0"}})
	obs, _ := BuildObservations(table, testReservoir)
	if len(obs) != 1 {
		t.Fatalf("fixture row did not build: %q %q", date, clockStr)
	}
	return obs[0].Timestamp
}
