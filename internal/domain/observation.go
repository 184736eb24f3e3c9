package domain

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the Date column. Workbook CSV
// exports produce either bare dates or dates with a midnight time attached.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/06",
}

// Observation is one validated gate-operation reading. Built only when both
// the timestamp and the lake elevation resolve; immutable afterwards.
type Observation struct {
	Timestamp     time.Time
	LakeElevation float64

	// GateOpenings holds one opening in feet per physical gate,
	// index-aligned with the reservoir's configured gate list.
	GateOpenings []float64

	// SourceRow is the 1-based row number in the repaired table, carried
	// for duplicate and drop reporting.
	SourceRow int
}

// BuildReport counts what the builder kept and dropped, for logging and
// metrics. The pipeline never aborts on a single bad row.
type BuildReport struct {
	RowsIn              int
	Built               int
	DroppedBadTime      int
	DroppedBadDate      int
	DroppedBadElevation int
}

// BuildObservations converts a repaired table into observations, preserving
// the original row order. Rows whose timestamp or lake elevation fail to
// parse are dropped and counted. Gate cells follow the fill rules: missing
// or non-numeric becomes 0, stray quote characters are stripped, inches
// convert to feet, values round to two decimals.
func BuildObservations(t RawTable, res Reservoir) ([]Observation, BuildReport) {
	report := BuildReport{RowsIn: len(t.Rows)}

	dateCol := t.Column(ColumnDate)
	timeCol := t.Column(ColumnTime)
	elevCol := t.Column(ColumnElevation)
	if dateCol < 0 || timeCol < 0 || elevCol < 0 {
		return nil, report
	}

	obs := make([]Observation, 0, len(t.Rows))
	for i, row := range t.Rows {
		hour, minute, sec, ok := ParseClockTime(NormalizeTime(t.Cell(row, timeCol)))
		if !ok {
			report.DroppedBadTime++
			continue
		}

		day, ok := parseDay(t.Cell(row, dateCol))
		if !ok {
			report.DroppedBadDate++
			continue
		}

		elev, err := strconv.ParseFloat(t.Cell(row, elevCol), 64)
		if err != nil {
			report.DroppedBadElevation++
			continue
		}

		openings := make([]float64, 0, res.GateCount)
		for g := 0; g < res.GateCount; g++ {
			openings = append(openings, parseGateOpening(t.Cell(row, res.GateBlockStart+g)))
		}

		obs = append(obs, Observation{
			Timestamp:     time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, 0, time.UTC),
			LakeElevation: elev,
			GateOpenings:  openings,
			SourceRow:     i + 1,
		})
	}
	report.Built = len(obs)
	return obs, report
}

// parseGateOpening coerces a raw gate cell to an opening in feet. The sheet
// logs openings in inches, sometimes with inch quotes (`6"`); anything that
// still fails to parse counts as a closed gate.
func parseGateOpening(cell string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(cell, `"`, ""))
	if s == "" {
		return 0
	}
	inches, err := strconv.ParseFloat(s, 64)
	if err != nil || inches < 0 {
		return 0
	}
	return round2(inches / 12.0)
}

func parseDay(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
