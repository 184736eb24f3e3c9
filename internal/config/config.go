package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/gate-ops-etl/internal/domain"
)

// Known sink names accepted in SINKS.
const (
	SinkSQLite = "sqlite"
	SinkKafka  = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir string

	Sinks          []string
	KafkaBrokers   []string
	KafkaSinkTopic string
	SQLitePath     string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ResyncSchedule is a cron expression for periodic reprocessing of the
	// workbook exports. Empty means run one pass and exit.
	ResyncSchedule string

	Reservoirs []domain.Reservoir
}

// Load reads configuration from environment variables, applying defaults
// where unset. Reservoir constants default to the City of Lawton engineering
// references and may be overridden per lake for recalibration.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	lawtonkaInvert, err := parseFloat("LAWTONKA_INVERT_ELEVATION", 1335.55)
	if err != nil {
		return nil, err
	}
	ellsworthInvert, err := parseFloat("ELLSWORTH_INVERT_ELEVATION", 1225.00)
	if err != nil {
		return nil, err
	}
	gateLength, err := parseFloat("GATE_LENGTH_FT", 20.0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         envOrDefault("GATE_LOG_DIR", "data"),
		Sinks:           splitList(envOrDefault("SINKS", SinkSQLite)),
		KafkaBrokers:    splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "reservoir-flow-series"),
		SQLitePath:      envOrDefault("SQLITE_PATH", "data/flows.db"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ResyncSchedule:  os.Getenv("RESYNC_SCHEDULE"),
		Reservoirs: []domain.Reservoir{
			{
				Name:                    "Lawtonka",
				SpillwayInvertElevation: lawtonkaInvert,
				GateLength:              gateLength,
				GateBlockStart:          4,
				GateCount:               8,
				Destination:             "//LAWTONKA/RES FLOW-OUT//IR-CENTURY/Obs Gate Ops",
			},
			{
				Name:                    "Ellsworth",
				SpillwayInvertElevation: ellsworthInvert,
				GateLength:              gateLength,
				GateBlockStart:          4,
				GateCount:               15,
				Destination:             "//ELLSWORTH/RES FLOW-OUT//IR-CENTURY/Obs Gate Ops",
			},
		},
	}

	if cfg.DataDir == "" {
		return nil, errors.New("GATE_LOG_DIR is required")
	}
	if len(cfg.Sinks) == 0 {
		return nil, errors.New("SINKS must name at least one sink")
	}
	for _, sink := range cfg.Sinks {
		switch sink {
		case SinkSQLite:
			if cfg.SQLitePath == "" {
				return nil, errors.New("SQLITE_PATH is required when the sqlite sink is enabled")
			}
		case SinkKafka:
			if len(cfg.KafkaBrokers) == 0 {
				return nil, errors.New("KAFKA_BROKERS is required when the kafka sink is enabled")
			}
			if cfg.KafkaSinkTopic == "" {
				return nil, errors.New("KAFKA_SINK_TOPIC is required when the kafka sink is enabled")
			}
		default:
			return nil, fmt.Errorf("unknown sink %q in SINKS", sink)
		}
	}
	for _, res := range cfg.Reservoirs {
		if err := res.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
