package domain

import (
	"regexp"
	"strings"
)

// dividerRe matches section-divider rows whose Date cell is a bare year.
var dividerRe = regexp.MustCompile(`^\d{4}$`)

// RepairSchema rewrites a raw gate-operation sheet into a stable layout.
// The source carries a two-level header: a group label spans the gate
// columns and the individual gate identifiers sit in the first data row.
// Repair splices those identifiers over the block, drops the trailing junk
// column, drops the consumed header row, discards bare-year divider rows,
// forward-fills the Date column, and keeps only rows that still have both a
// Time and a Lake Elevation value. It is a pure transformation; the input
// table is not mutated.
func RepairSchema(t RawTable, res Reservoir) RawTable {
	if len(t.Rows) == 0 {
		return RawTable{Headers: append([]string(nil), t.Headers...)}
	}

	headers := append([]string(nil), t.Headers...)
	gateIDs := t.Rows[0]
	end := res.GateBlockStart + res.GateCount
	for i := res.GateBlockStart; i < end && i < len(headers); i++ {
		headers[i] = t.Cell(gateIDs, i)
	}

	// The sheet ends with a notes column nothing downstream reads.
	width := len(headers) - 1
	headers = headers[:width]

	dateCol := columnIn(headers, ColumnDate)
	timeCol := columnIn(headers, ColumnTime)
	elevCol := columnIn(headers, ColumnElevation)
	if dateCol < 0 || timeCol < 0 || elevCol < 0 {
		return RawTable{Headers: headers}
	}

	repaired := RawTable{Headers: headers}
	lastDate := ""
	for _, row := range t.Rows[1:] {
		cells := make([]string, width)
		for i := range cells {
			cells[i] = t.Cell(row, i)
		}

		if dividerRe.MatchString(cells[dateCol]) {
			continue
		}

		if cells[dateCol] == "" {
			cells[dateCol] = lastDate
		} else {
			lastDate = cells[dateCol]
		}

		if cells[dateCol] == "" || cells[timeCol] == "" || cells[elevCol] == "" {
			continue
		}

		repaired.Rows = append(repaired.Rows, cells)
	}
	return repaired
}

func columnIn(headers []string, name string) int {
	for i, h := range headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
