package domain

import (
	"fmt"
	"strings"
)

// Canonical column labels in the raw gate-operation sheets.
const (
	ColumnDate      = "Date"
	ColumnTime      = "Time"
	ColumnElevation = "Lake Elevation"
)

// Reservoir holds the fixed configuration for one lake. None of these values
// are discovered from data; they come from the dam engineering references and
// the known sheet layout.
type Reservoir struct {
	Name string

	// SpillwayInvertElevation is the datum for head computation, in feet
	// (Lawtonka 1335.55, Ellsworth 1225.00).
	SpillwayInvertElevation float64

	// GateLength is the width of each gate opening in feet, 20.0 at both dams.
	GateLength float64

	// GateBlockStart is the index of the first gate column in the raw sheet;
	// GateCount is the number of physical gates (8 at Lawtonka, 15 at
	// Ellsworth). The individual gate identifiers sit in the first data row.
	GateBlockStart int
	GateCount      int

	// Destination tags the emitted series for the time-series store,
	// e.g. "//LAWTONKA/RES FLOW-OUT//IR-CENTURY/Obs Gate Ops".
	Destination string
}

// Validate reports a missing or nonsensical reservoir constant. Constants
// are configuration; a bad one aborts that reservoir before any data is read.
func (r Reservoir) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("reservoir name is required")
	}
	if r.GateLength <= 0 {
		return fmt.Errorf("reservoir %s: gate length must be positive, got %v", r.Name, r.GateLength)
	}
	if r.GateCount <= 0 {
		return fmt.Errorf("reservoir %s: gate count must be positive, got %d", r.Name, r.GateCount)
	}
	if r.GateBlockStart < 0 {
		return fmt.Errorf("reservoir %s: gate block start must not be negative, got %d", r.Name, r.GateBlockStart)
	}
	return nil
}

// RawTable is the untyped tabular form delivered by the source adapter:
// one header per column and rows of cell strings. A missing cell is the
// empty string. RawTable exists only until schema repair consumes it.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the named header, or -1 if absent.
func (t RawTable) Column(name string) int {
	for i, h := range t.Headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at (row, col), tolerating ragged rows.
func (t RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
