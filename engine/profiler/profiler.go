package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/stage"
	"go.uber.org/zap"
)

// Profiler tracks tick rate, pipeline throughput and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *zap.Logger
	now            func() time.Time
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	window Window
}

// Window accumulates pipeline stats between two reports.
type Window struct {
	Ticks              int
	Objects            int // as of the latest tick
	Dirty              int
	Generated          int
	GenerationFailures int
	Applied            int
	Skipped            int
	Deferred           int // as of the latest tick
	StageDurations     [4]time.Duration
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: destination of the periodic report; nil discards it
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger:         logger,
		now:            time.Now,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval sets how often Tick reports. Non-positive values are ignored.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// Record folds one scene tick into the current window.
//
// Parameters:
//   - stats: the stats returned by a scene tick
func (p *Profiler) Record(stats stage.TickStats) {
	w := &p.window
	w.Objects = stats.Objects
	w.Dirty += stats.Dirty
	w.Generated += stats.Generated
	w.GenerationFailures += stats.GenerationFailures
	w.Applied += stats.Applied
	w.Skipped += stats.Skipped
	w.Deferred = stats.Deferred
	for i := range w.StageDurations {
		w.StageDurations[i] += stats.Duration(stage.Phase(i))
	}
}

// Window returns the stats accumulated since the last report.
func (p *Profiler) Window() Window {
	return p.window
}

// Tick should be called once per engine tick to track tick timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: tick rate, pipeline throughput, mean stage times, heap usage, allocation rate, GC count/pause times.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.tickCount++
	p.window.Ticks++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	tps := float64(p.tickCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	w := p.window
	ticks := time.Duration(max(w.Ticks, 1))
	p.logger.Info("profiler",
		zap.Float64("tps", tps),
		zap.Int("objects", w.Objects),
		zap.Int("dirty", w.Dirty),
		zap.Int("generated", w.Generated),
		zap.Int("generation_failures", w.GenerationFailures),
		zap.Int("applied", w.Applied),
		zap.Int("skipped", w.Skipped),
		zap.Int("deferred", w.Deferred),
		zap.Duration("animate_avg", w.StageDurations[stage.PhaseAnimate]/ticks),
		zap.Duration("track_avg", w.StageDurations[stage.PhaseTrack]/ticks),
		zap.Duration("generate_avg", w.StageDurations[stage.PhaseGenerate]/ticks),
		zap.Duration("apply_avg", w.StageDurations[stage.PhaseApply]/ticks),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("gc_last_us", lastPauseUs),
		zap.Uint64("gc_max_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	)

	p.tickCount = 0
	p.window = Window{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
