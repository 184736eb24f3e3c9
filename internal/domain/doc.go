// Package domain models reservoir gate-operation logs for Lake Lawtonka and
// Lake Ellsworth and the discharge computed from them.
//
// # Data Source
//
// Gate operations are hand-logged by City of Lawton dam operators in a
// spreadsheet, one sheet per reservoir, spanning roughly a decade of
// irregular readings. The workbook is exported to CSV and ingested as a raw
// table. The record is messy in predictable ways:
//
//   - The gate columns carry a two-level header: a group label ("Gates")
//     spans the block, with the individual gate numbers written in the first
//     data row. Schema repair splices those identifiers over the block.
//   - Section-divider rows hold only a bare four-digit year in the Date
//     column and carry no data.
//   - Operators write the date once and log several readings beneath it, so
//     missing dates forward-fill from the previous row.
//   - Gate openings are logged in inches, sometimes as quoted strings
//     (`6"`). They convert to feet (/12) and round to two decimals.
//
// # Time Encodings
//
// The Time column mixes several free-text shapes, normalized to HH:MM:SS:
//
//	"123"    →  "1:23:00"     first digit is the hour
//	"1234"   →  "12:34:00"
//	"12345"  →  "12:34:5"     legacy quirk: the seconds field stays unpadded
//	"1:23"   →  "01:23:00"
//	"1:24P"  →  "13:24:00"    12-hour marker, A or P, case-insensitive
//
// Unrecognized shapes pass through unchanged and stand or fall at the
// validating parse; a value that never resolves to a valid time of day drops
// the whole row. The unpadded-seconds output of the five-digit branch
// matches the legacy workbook tooling and is preserved deliberately.
//
// # Flow Computation
//
// Discharge under a partially raised gate uses the USBR underflow weir
// equation (Design of Small Dams, p. 386):
//
//	Q = 2/3 · √(2g) · C · L · (H1^1.5 − H2^1.5)
//
// with g = 32.2 ft/s², L the gate length (20 ft at both dams), H1 the head
// above the spillway invert, H2 = H1 − d for gate opening d, and C the
// discharge coefficient read from a per-reservoir rating curve keyed by d.
// A closed gate contributes nothing and performs no curve lookup; when the
// opening exceeds the available head (H2 < 0) the gate likewise contributes
// nothing. Openings absent from the curve resolve to the nearest tabulated
// d, reported as a fallback match for observability.
//
// # Duplicate Timestamps
//
// Operators occasionally log two readings at the same minute. The assembled
// series retains every record in stable source order and flags the shared
// timestamps in its duplicate report; sinks decide their own disposition.
package domain
