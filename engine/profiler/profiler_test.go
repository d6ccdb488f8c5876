package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfilerReportsAtInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler(zap.New(core))

	start := time.Unix(0, 0)
	now := start
	p.now = func() time.Time { return now }
	p.lastTime = start

	var stats stage.TickStats
	stats.Objects = 10
	stats.Applied = 3
	stats.Deferred = 7
	stats.StageDurations[stage.PhaseGenerate] = 2 * time.Millisecond

	for range 4 {
		now = now.Add(200 * time.Millisecond)
		p.Record(stats)
		assert.False(t, p.Tick())
	}
	assert.Equal(t, 12, p.Window().Applied)
	assert.Equal(t, 4, p.Window().Ticks)

	now = now.Add(200 * time.Millisecond)
	p.Record(stats)
	require.True(t, p.Tick())
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(15), fields["applied"])
	assert.Equal(t, int64(7), fields["deferred"])
	assert.Equal(t, 2*time.Millisecond, fields["generate_avg"])
	assert.InDelta(t, 5.0, fields["tps"], 1e-9)
	assert.Zero(t, p.Window().Ticks, "window resets after a report")
}
