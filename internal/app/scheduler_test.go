package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingWarmer struct {
	runs atomic.Int32
}

func (w *countingWarmer) WarmAll(context.Context) (int, error) {
	w.runs.Add(1)
	return 3, nil
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	warmer := &countingWarmer{}
	s := NewScheduler(warmer, 10*time.Millisecond, zap.NewNop())

	s.Start(t.Context())

	assert.Eventually(t, func() bool { return warmer.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	after := warmer.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, warmer.runs.Load(), "no runs after Stop")
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	warmer := &countingWarmer{}
	s := NewScheduler(warmer, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(t.Context())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), warmer.runs.Load())
}
