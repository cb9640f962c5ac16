package telemetry

import (
	"context"
	"testing"

	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestProviders_DisabledAreNoops(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	cfg := config.TelemetryConfig{ServiceName: "retailcore-test"}

	tp, err := NewTracerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	counter, err := mp.Meter("test").Int64Counter("noop")
	require.NoError(t, err)
	counter.Add(ctx, 1)
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestMeterProvider_MetricsDisabledWhenTelemetryOn(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{
		Enabled:        true,
		MetricsEnabled: false,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.Contains(t, samplerFor(tt.ratio).Description(), tt.want)
	}
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(-1).Description())
}

func TestNewProfiler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		p, err := NewProfiler(config.TelemetryConfig{}, "test", zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("enabled without address", func(t *testing.T) {
		_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, "test", zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}

func TestWithProfilingLabels(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called++ })
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:  "/api/v1/sales",
		ProfilingLabelMethod: "",
	}, func(ctx context.Context) {
		assert.NotNil(t, ctx)
		called++
	})
	assert.Equal(t, 2, called)
}
