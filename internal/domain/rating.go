package domain

import (
	"fmt"
	"math"
)

// RatingEntry pairs a gate opening d (feet, rounded to two decimals) with
// its discharge coefficient C.
type RatingEntry struct {
	D float64
	C float64
}

// FallbackMatch reports a nearest-value substitution during curve lookup.
// Informational only; a fallback never fails the computation.
type FallbackMatch struct {
	Requested   float64
	Substituted float64
}

// RatingCurve is the immutable per-reservoir lookup table from gate opening
// to discharge coefficient, plus the reservoir constants the weir equation
// needs. Loaded once, read-only thereafter, safe for concurrent lookups.
type RatingCurve struct {
	reservoir  string
	invert     float64
	gateLength float64
	entries    []RatingEntry
}

// NewRatingCurve builds the curve for a reservoir. Entry d values are
// rounded to two decimals to match the builder's openings; entries with a
// non-finite d or C are skipped the way the source coerces bad cells. A
// curve with no usable entries is a fatal configuration error: the nearest-
// match fallback has nothing to fall back on.
func NewRatingCurve(res Reservoir, entries []RatingEntry) (*RatingCurve, error) {
	kept := make([]RatingEntry, 0, len(entries))
	for _, e := range entries {
		if math.IsNaN(e.D) || math.IsInf(e.D, 0) || math.IsNaN(e.C) || math.IsInf(e.C, 0) {
			continue
		}
		kept = append(kept, RatingEntry{D: round2(e.D), C: e.C})
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("rating curve for %s has no usable entries", res.Name)
	}
	return &RatingCurve{
		reservoir:  res.Name,
		invert:     res.SpillwayInvertElevation,
		gateLength: res.GateLength,
		entries:    kept,
	}, nil
}

// Lookup returns the discharge coefficient for gate opening d. An exact
// match on the stored d wins; otherwise the entry with the smallest |d − q|
// substitutes, first occurrence breaking ties, and the substitution is
// reported so callers can surface it.
func (rc *RatingCurve) Lookup(d float64) (float64, *FallbackMatch) {
	for _, e := range rc.entries {
		if e.D == d {
			return e.C, nil
		}
	}

	best := rc.entries[0]
	for _, e := range rc.entries[1:] {
		if math.Abs(e.D-d) < math.Abs(best.D-d) {
			best = e
		}
	}
	return best.C, &FallbackMatch{Requested: d, Substituted: best.D}
}

// Reservoir returns the name of the reservoir the curve was loaded for.
func (rc *RatingCurve) Reservoir() string { return rc.reservoir }

// Len returns the number of usable entries.
func (rc *RatingCurve) Len() int { return len(rc.entries) }
