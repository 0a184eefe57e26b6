package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/stagedocs/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Meter)

	_, span := StartSpan(context.Background(), p.Tracer, "test")
	assert.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
	End(span, errors.New("ignored"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_EnabledNoneExporter(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), p.Tracer, "tree.build", AttrUserID.Int64(7))
	assert.True(t, span.SpanContext().IsValid())
	End(span, nil)
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), config.TelemetryConfig{Enabled: true, Exporter: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter")
}

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(Noop().Meter)
	require.NoError(t, err)
	assert.NotNil(t, m.TreeBuilds)
	assert.NotNil(t, m.TreeDuration)
	assert.NotNil(t, NoopMetrics().CacheHits)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log.WithField("user", 7).Debug("tree built")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tree built", entry["msg"])
	assert.Equal(t, float64(7), entry["user"])
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}
