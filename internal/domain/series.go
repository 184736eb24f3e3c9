package domain

import (
	"sort"
	"time"
)

// Series tagging shared by every sink: discharge is an instantaneous
// (snapshot) series in cubic feet per second, not a period average.
const (
	SeriesUnits     = "cfs"
	SeriesValueType = "INST"
)

// FlowRecord is one point of the output series.
type FlowRecord struct {
	Timestamp    time.Time
	TotalFlowCFS float64

	// SourceRow ties the record back to its repaired-table row for the
	// duplicate report.
	SourceRow int
}

// DuplicateTimestamp lists the source rows of records sharing one timestamp.
type DuplicateTimestamp struct {
	Timestamp time.Time
	Rows      []int
}

// FlowSeries is the assembled output for one reservoir, ready for a sink.
type FlowSeries struct {
	Reservoir   string
	Destination string
	Units       string
	ValueType   string
	Records     []FlowRecord
	Duplicates  []DuplicateTimestamp
	ProcessedAt time.Time
}

// AssembleSeries orders records ascending by timestamp and detects shared
// timestamps. Duplicates are retained in stable source order and flagged in
// the report rather than resolved here; each sink decides its own
// disposition (the SQLite store, for one, upserts last-wins).
func AssembleSeries(res Reservoir, records []FlowRecord) FlowSeries {
	ordered := append([]FlowRecord(nil), records...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var dups []DuplicateTimestamp
	for i := 0; i < len(ordered); {
		j := i + 1
		for j < len(ordered) && ordered[j].Timestamp.Equal(ordered[i].Timestamp) {
			j++
		}
		if j-i > 1 {
			rows := make([]int, 0, j-i)
			for _, r := range ordered[i:j] {
				rows = append(rows, r.SourceRow)
			}
			dups = append(dups, DuplicateTimestamp{Timestamp: ordered[i].Timestamp, Rows: rows})
		}
		i = j
	}

	return FlowSeries{
		Reservoir:   res.Name,
		Destination: res.Destination,
		Units:       SeriesUnits,
		ValueType:   SeriesValueType,
		Records:     ordered,
		Duplicates:  dups,
		ProcessedAt: clock.Now(),
	}
}
