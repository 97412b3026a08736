package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler_Tick(t *testing.T) {
	s := NewManualScheduler(nil)
	var order []string
	require.NoError(t, s.Every(time.Second, NewTask("reconcile", func(context.Context) error {
		order = append(order, "reconcile")
		return nil
	})))
	require.NoError(t, s.Every(time.Minute, NewTask("broken", func(context.Context) error {
		order = append(order, "broken")
		return errors.New("boom")
	})))

	err := s.Tick(context.Background())
	assert.ErrorContains(t, err, "broken: boom")
	assert.Equal(t, []string{"reconcile", "broken"}, order)
	assert.Equal(t, []string{"reconcile", "broken"}, s.Tasks())
}

func TestEvery_Rejects(t *testing.T) {
	task := NewTask("noop", func(context.Context) error { return nil })
	for _, s := range []Scheduler{NewManualScheduler(nil), NewTickerScheduler(nil)} {
		assert.Error(t, s.Every(0, task))
		assert.Error(t, s.Every(-time.Second, task))
		assert.Error(t, s.Every(time.Second, nil))
	}
}

func TestTickerScheduler_RunsUntilStopped(t *testing.T) {
	s := NewTickerScheduler(nil)
	var runs atomic.Int32
	require.NoError(t, s.Every(5*time.Millisecond, NewTask("count", func(context.Context) error {
		runs.Add(1)
		return nil
	})))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")
}

func TestTickerScheduler_StopsWithContext(t *testing.T) {
	s := NewTickerScheduler(nil)
	require.NoError(t, s.Every(time.Millisecond, NewTask("noop", func(context.Context) error { return nil })))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Stop to return after the context was cancelled")
	}
}
