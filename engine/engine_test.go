package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/config"
	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-morph/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTicksScenesUntilQuit(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeMemory)
	require.NoError(t, err)
	cfg := config.Default().Pipeline
	cfg.PoolCapacity = 4
	s, err := scene.NewScene("engine", r, cfg)
	require.NoError(t, err)
	defer s.Close()
	h, err := s.Spawn(game_object.DefaultGeometryParams(), 0)
	require.NoError(t, err)

	e := NewEngine(WithTickRate(500), WithScene(0, s), WithProfiling(true))
	calls := 0
	e.SetTickCallback(func(dt float32) {
		calls++
		assert.Positive(t, dt)
		if calls == 5 {
			e.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
	}

	assert.Equal(t, 5, calls)
	assert.Equal(t, uint64(5), e.Ticks())
	snap, err := s.Snapshot(h)
	require.NoError(t, err)
	assert.Positive(t, snap.Tracker.LastAppliedVersion)
}

func TestQuitBeforeRun(t *testing.T) {
	e := NewEngine()
	e.Quit()
	e.Quit()
	e.Run()
	assert.Zero(t, e.Ticks())
}

func TestTickRate(t *testing.T) {
	e := NewEngine(WithTickRate(0))
	assert.Equal(t, time.Second/60, e.TickRate())
	e.SetTickRate(250)
	assert.Equal(t, 4*time.Millisecond, e.TickRate())
}

func TestSceneRegistry(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeMemory)
	require.NoError(t, err)
	s, err := scene.NewScene("registry", r, config.Default().Pipeline)
	require.NoError(t, err)
	defer s.Close()

	e := NewEngine()
	e.AddScene(3, s)
	assert.Equal(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)
	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
}
