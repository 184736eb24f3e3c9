package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
	"github.com/couchcryptid/gate-ops-etl/internal/observability"
)

// FlowTransformer implements SeriesTransformer using the domain transforms:
// schema repair, observation building, per-gate weir flow, and series
// assembly, with drop counts and fallback matches surfaced to logs and
// metrics along the way.
type FlowTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a FlowTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *FlowTransformer {
	return &FlowTransformer{logger: logger, metrics: metrics}
}

func (t *FlowTransformer) Transform(_ context.Context, input ReservoirInput) (domain.FlowSeries, error) {
	res := input.Reservoir

	curve, err := domain.NewRatingCurve(res, input.RatingCurve)
	if err != nil {
		return domain.FlowSeries{}, err
	}

	repaired := domain.RepairSchema(input.GateLog, res)
	observations, report := domain.BuildObservations(repaired, res)
	t.recordBuildReport(res, report)

	records := make([]domain.FlowRecord, 0, len(observations))
	for _, obs := range observations {
		total, fallbacks := domain.TotalFlow(obs, curve)
		for _, fb := range fallbacks {
			t.logger.Info("rating curve miss, nearest entry used",
				"reservoir", res.Name,
				"requested_d", fb.Requested,
				"substituted_d", fb.Substituted,
				"timestamp", obs.Timestamp,
			)
			t.metrics.RatingFallbacks.WithLabelValues(res.Name).Inc()
		}
		t.logger.Debug("flow computed",
			"reservoir", res.Name,
			"timestamp", obs.Timestamp,
			"lake_elevation", obs.LakeElevation,
			"total_flow_cfs", total,
		)
		records = append(records, domain.FlowRecord{
			Timestamp:    obs.Timestamp,
			TotalFlowCFS: total,
			SourceRow:    obs.SourceRow,
		})
	}

	series := domain.AssembleSeries(res, records)
	for _, dup := range series.Duplicates {
		t.logger.Warn("duplicate timestamp retained",
			"reservoir", res.Name,
			"timestamp", dup.Timestamp,
			"rows", dup.Rows,
		)
		t.metrics.DuplicateStamps.WithLabelValues(res.Name).Inc()
	}
	return series, nil
}

func (t *FlowTransformer) recordBuildReport(res domain.Reservoir, report domain.BuildReport) {
	t.metrics.RowsIngested.WithLabelValues(res.Name).Add(float64(report.RowsIn))
	t.metrics.ObservationsBuilt.WithLabelValues(res.Name).Add(float64(report.Built))
	t.metrics.RowsDropped.WithLabelValues(res.Name, "bad_time").Add(float64(report.DroppedBadTime))
	t.metrics.RowsDropped.WithLabelValues(res.Name, "bad_date").Add(float64(report.DroppedBadDate))
	t.metrics.RowsDropped.WithLabelValues(res.Name, "bad_elevation").Add(float64(report.DroppedBadElevation))

	dropped := report.RowsIn - report.Built
	if dropped > 0 {
		t.logger.Warn("rows dropped during observation building",
			"reservoir", res.Name,
			"rows_in", report.RowsIn,
			"built", report.Built,
			"bad_time", report.DroppedBadTime,
			"bad_date", report.DroppedBadDate,
			"bad_elevation", report.DroppedBadElevation,
		)
	}
}
