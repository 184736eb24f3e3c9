//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkaadapter "github.com/couchcryptid/gate-ops-etl/internal/adapter/kafka"
	"github.com/couchcryptid/gate-ops-etl/internal/config"
	"github.com/couchcryptid/gate-ops-etl/internal/domain"
	"github.com/couchcryptid/gate-ops-etl/internal/observability"
	"github.com/couchcryptid/gate-ops-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-reservoir-flow-series"

var lawtonka = domain.Reservoir{
	Name:                    "Lawtonka",
	SpillwayInvertElevation: 1335.55,
	GateLength:              20.0,
	GateBlockStart:          4,
	GateCount:               2,
	Destination:             "//LAWTONKA/RES FLOW-OUT//IR-CENTURY/Obs Gate Ops",
}

// memorySource feeds the pipeline fixed tables, keeping the test focused on
// the Kafka sink.
type memorySource struct {
	gateLog domain.RawTable
	curve   []domain.RatingEntry
}

func (m *memorySource) GateLog(_ context.Context, _ domain.Reservoir) (domain.RawTable, error) {
	return m.gateLog, nil
}

func (m *memorySource) RatingCurve(_ context.Context, _ domain.Reservoir) ([]domain.RatingEntry, error) {
	return m.curve, nil
}

// flowPoint mirrors the sink wire format.
type flowPoint struct {
	Reservoir   string    `json:"reservoir"`
	Destination string    `json:"destination"`
	Timestamp   time.Time `json:"timestamp"`
	FlowCFS     float64   `json:"flow_cfs"`
	Units       string    `json:"units"`
	ValueType   string    `json:"value_type"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkatc.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelineEndToEnd wires source → transformer → kafka sink against a real
// broker and verifies the published series is ordered and fully tagged.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	source := &memorySource{
		gateLog: domain.RawTable{
			Headers: []string{"Date", "Time", "Operator", "Lake Elevation", "Gates", "", "Notes"},
			Rows: [][]string{
				{"", "", "", "", "Gate 1", "Gate 2", ""},
				{"2015", "", "", "", "", "", ""},
				// Out of time order on purpose: the sink must still
				// receive an ascending series.
				{"2020-05-02", "930", "JD", "1336.95", "0", "0", ""},
				{"2020-05-01", "800", "JD", "1337.00", `6"`, "0", ""},
			},
		},
		curve: []domain.RatingEntry{{D: 0.25, C: 0.60}, {D: 0.50, C: 0.62}},
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(discardLogger(), metrics)
	p := pipeline.New(source, transformer, []pipeline.SeriesSink{writer}, []domain.Reservoir{lawtonka}, discardLogger(), metrics)

	require.NoError(t, p.Run(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	points := make([]flowPoint, 0, 2)
	for len(points) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var point flowPoint
		require.NoError(t, json.Unmarshal(msg.Value, &point))
		points = append(points, point)

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "cfs", headers["units"])
		assert.Equal(t, "INST", headers["value_type"])
		_, err = time.Parse(time.RFC3339, headers["processed_at"])
		assert.NoError(t, err, "processed_at should be valid RFC3339")
	}

	// Ascending despite the shuffled source rows.
	assert.Equal(t, time.Date(2020, 5, 1, 8, 0, 0, 0, time.UTC), points[0].Timestamp)
	assert.Equal(t, time.Date(2020, 5, 2, 9, 30, 0, 0, time.UTC), points[1].Timestamp)
	assert.InDelta(t, 54.40, points[0].FlowCFS, 0.01)
	assert.Zero(t, points[1].FlowCFS)

	for _, point := range points {
		assert.Equal(t, "Lawtonka", point.Reservoir)
		assert.Equal(t, lawtonka.Destination, point.Destination)
	}

	// No third message: the divider row never reaches the sink.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected exactly two messages on the sink topic")
}
