// Command flowcheck runs the gate-log transformation for one or all
// reservoirs and prints a summary instead of writing to any sink. It is
// meant for eyeballing a new batch of operator sheets before the service
// publishes them.
//
// Usage:
//
//	go run ./cmd/flowcheck -data-dir data
//	go run ./cmd/flowcheck -data-dir data -reservoir Lawtonka
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/gate-ops-etl/internal/adapter/csvsource"
	"github.com/couchcryptid/gate-ops-etl/internal/config"
	"github.com/couchcryptid/gate-ops-etl/internal/domain"
)

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing gate-ops and rating-curve CSV files")
	name := flag.String("reservoir", "", "restrict the check to one reservoir (default: all configured)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	reservoirs := cfg.Reservoirs
	if *name != "" {
		reservoirs = nil
		for _, res := range cfg.Reservoirs {
			if strings.EqualFold(res.Name, *name) {
				reservoirs = append(reservoirs, res)
			}
		}
		if len(reservoirs) == 0 {
			fmt.Fprintf(os.Stderr, "FATAL: unknown reservoir %q\n", *name)
			os.Exit(1)
		}
	}

	if code := run(*dataDir, reservoirs); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, reservoirs []domain.Reservoir) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := csvsource.New(dataDir, logger)
	ctx := context.Background()

	fmt.Println("=== Gate Operation Flow Check ===")

	failed := false
	for _, res := range reservoirs {
		fmt.Printf("\n--- %s ---\n", res.Name)
		if err := checkReservoir(ctx, source, res); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %s: %v\n", res.Name, err)
			failed = true
		}
	}

	if failed {
		return 1
	}
	fmt.Println("\nAll reservoirs checked.")
	return 0
}

func checkReservoir(ctx context.Context, source *csvsource.Source, res domain.Reservoir) error {
	gateLog, err := source.GateLog(ctx, res)
	if err != nil {
		return fmt.Errorf("read gate log: %w", err)
	}
	entries, err := source.RatingCurve(ctx, res)
	if err != nil {
		return fmt.Errorf("read rating curve: %w", err)
	}
	curve, err := domain.NewRatingCurve(res, entries)
	if err != nil {
		return err
	}

	repaired := domain.RepairSchema(gateLog, res)
	observations, report := domain.BuildObservations(repaired, res)

	fmt.Printf("raw rows:        %d\n", len(gateLog.Rows))
	fmt.Printf("repaired rows:   %d\n", report.RowsIn)
	fmt.Printf("observations:    %d\n", report.Built)
	fmt.Printf("dropped:         %d bad time, %d bad date, %d bad elevation\n",
		report.DroppedBadTime, report.DroppedBadDate, report.DroppedBadElevation)
	fmt.Printf("rating entries:  %d\n", curve.Len())

	records := make([]domain.FlowRecord, 0, len(observations))
	fallbacks := 0
	for _, obs := range observations {
		total, matched := domain.TotalFlow(obs, curve)
		for _, m := range matched {
			fallbacks++
			fmt.Printf("  fallback: opening %.2f ft not in curve, used %.2f ft (row %d)\n",
				m.Requested, m.Substituted, obs.SourceRow)
		}
		records = append(records, domain.FlowRecord{
			Timestamp:    obs.Timestamp,
			TotalFlowCFS: total,
			SourceRow:    obs.SourceRow,
		})
	}
	fmt.Printf("curve fallbacks: %d\n", fallbacks)

	series := domain.AssembleSeries(res, records)
	for _, dup := range series.Duplicates {
		fmt.Printf("  duplicate timestamp %s in source rows %v\n",
			dup.Timestamp.Format(time.RFC3339), dup.Rows)
	}
	fmt.Printf("duplicates:      %d\n", len(series.Duplicates))

	printRecords(series.Records)
	return nil
}

// printRecords shows the head and tail of the series so operators can
// sanity-check the flows against the sheets.
func printRecords(records []domain.FlowRecord) {
	const edge = 3
	if len(records) == 0 {
		fmt.Println("series:          empty")
		return
	}
	fmt.Printf("series:          %d records, %s .. %s\n",
		len(records),
		records[0].Timestamp.Format(time.RFC3339),
		records[len(records)-1].Timestamp.Format(time.RFC3339),
	)
	for i, rec := range records {
		if i == edge && len(records) > 2*edge {
			fmt.Println("  ...")
		}
		if i >= edge && i < len(records)-edge {
			continue
		}
		fmt.Printf("  %s  %8.2f cfs\n", rec.Timestamp.Format("2006-01-02 15:04:05"), rec.TotalFlowCFS)
	}
}
