package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
	"github.com/couchcryptid/gate-ops-etl/internal/observability"
)

// TableSource supplies the raw tabular inputs for one reservoir.
type TableSource interface {
	GateLog(ctx context.Context, res domain.Reservoir) (domain.RawTable, error)
	RatingCurve(ctx context.Context, res domain.Reservoir) ([]domain.RatingEntry, error)
}

// SeriesTransformer turns one reservoir's raw inputs into a flow series.
type SeriesTransformer interface {
	Transform(ctx context.Context, input ReservoirInput) (domain.FlowSeries, error)
}

// SeriesSink accepts an assembled flow series. Name identifies the sink in
// logs and metrics.
type SeriesSink interface {
	Name() string
	WriteSeries(ctx context.Context, series domain.FlowSeries) error
}

// ReservoirInput bundles everything the transformer needs for one reservoir.
type ReservoirInput struct {
	Reservoir   domain.Reservoir
	GateLog     domain.RawTable
	RatingCurve []domain.RatingEntry
}

// Pipeline orchestrates the extract-transform-load pass across reservoirs.
type Pipeline struct {
	source      TableSource
	transformer SeriesTransformer
	sinks       []SeriesSink
	reservoirs  []domain.Reservoir
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(source TableSource, transformer SeriesTransformer, sinks []SeriesSink, reservoirs []domain.Reservoir, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      source,
		transformer: transformer,
		sinks:       sinks,
		reservoirs:  reservoirs,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once at least one reservoir has been processed
// end to end, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a reservoir pass yet")
	}
	return nil
}

// Run executes one pass over every configured reservoir. A failure in one
// reservoir halts that reservoir only; the rest still process. The joined
// per-reservoir errors are returned after the pass completes.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline pass started", "reservoirs", len(p.reservoirs))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var errs []error
	for _, res := range p.reservoirs {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return errors.Join(errs...)
		}
		if err := p.processReservoir(ctx, res); err != nil {
			p.logger.Error("reservoir pass failed", "reservoir", res.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, err))
			continue
		}
		p.ready.Store(true)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) processReservoir(ctx context.Context, res domain.Reservoir) error {
	start := time.Now()

	gateLog, err := p.source.GateLog(ctx, res)
	if err != nil {
		return fmt.Errorf("read gate log: %w", err)
	}
	curve, err := p.source.RatingCurve(ctx, res)
	if err != nil {
		return fmt.Errorf("read rating curve: %w", err)
	}

	series, err := p.transformer.Transform(ctx, ReservoirInput{
		Reservoir:   res,
		GateLog:     gateLog,
		RatingCurve: curve,
	})
	if err != nil {
		return err
	}

	for _, sink := range p.sinks {
		if err := sink.WriteSeries(ctx, series); err != nil {
			return fmt.Errorf("write series to %s: %w", sink.Name(), err)
		}
		p.metrics.RecordsWritten.WithLabelValues(res.Name, sink.Name()).Add(float64(len(series.Records)))
	}

	p.metrics.ReservoirDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("reservoir pass complete",
		"reservoir", res.Name,
		"records", len(series.Records),
		"duplicates", len(series.Duplicates),
		"duration", time.Since(start),
	)
	return nil
}
