package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func runLoop(t *testing.T, cfg LoopConfig) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, cancel
}

func TestLoop_RunsPostedEventsInOrder(t *testing.T) {
	l, _ := runLoop(t, LoopConfig{})

	var got []int
	for i := 0; i < 50; i++ {
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_PostFromInsideLoop(t *testing.T) {
	l, _ := runLoop(t, LoopConfig{})

	var order []string
	l.Post(func() {
		order = append(order, "outer")
		l.Post(func() { order = append(order, "inner") })
	})
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoop_CallReturnsError(t *testing.T) {
	l, _ := runLoop(t, LoopConfig{})
	want := errors.New("boom")
	assert.ErrorIs(t, l.Call(context.Background(), func() error { return want }), want)
}

func TestLoop_RecoversFromPanic(t *testing.T) {
	l, _ := runLoop(t, LoopConfig{})

	l.Post(func() { panic("bad handler") })
	err := l.Call(context.Background(), func() error { panic("bad call") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad call")

	// Still serving.
	assert.NoError(t, l.Call(context.Background(), func() error { return nil }))
}

func TestLoop_CallAfterStop(t *testing.T) {
	l, cancel := runLoop(t, LoopConfig{})
	cancel()

	require.Eventually(t, func() bool {
		return errors.Is(l.Call(context.Background(), func() error { return nil }), ErrLoopStopped)
	}, waitFor, tick)
}

func TestLoop_CallHonoursContext(t *testing.T) {
	l := NewLoop(LoopConfig{}) // never run
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Call(ctx, func() error { return nil }), context.DeadlineExceeded)
}

func TestLoop_ResyncTicker(t *testing.T) {
	var n atomic.Int32
	runLoop(t, LoopConfig{Interval: 10 * time.Millisecond, Resync: func() { n.Add(1) }})

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, waitFor, tick)
}
