package loop

import (
	"context"
	"errors"
	"runtime/pprof"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) (*Loop, <-chan error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := New(logger)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()
	t.Cleanup(func() { l.Quit(nil) })
	return l, errCh
}

func TestPost_RunsInOrder(t *testing.T) {
	l, errCh := newTestLoop(t)

	var got []int
	for i := range 5 {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.True(t, l.Post(func() { l.Quit(nil) }))

	require.NoError(t, <-errCh)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestCall_Waits(t *testing.T) {
	l, _ := newTestLoop(t)

	var ran bool
	require.NoError(t, l.Call(func() { ran = true }))
	assert.True(t, ran)
}

func TestQuit_RecordsFirstError(t *testing.T) {
	l, errCh := newTestLoop(t)
	boom := errors.New("boom")

	l.Post(func() {
		l.Quit(boom)
		l.Quit(errors.New("second"))
	})

	assert.ErrorIs(t, <-errCh, boom)
	assert.ErrorIs(t, l.err, boom)
	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Call(func() {}), ErrStopped)
}

func TestRun_ContextCancel(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	<-l.Done()
}

func TestRun_RecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := New(logger)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	l.Post(func() { panic("bad task") })
	require.NoError(t, l.Call(func() {}))
	l.Quit(nil)
	require.NoError(t, <-errCh)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Loop task panicked", hook.AllEntries()[0].Message)
}

func TestAfterFunc_FiresOnce(t *testing.T) {
	l, _ := newTestLoop(t)

	fired := make(chan struct{}, 2)
	tm := l.AfterFunc(5*time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Eventually(t, func() bool { return l.activeTimers() == 0 }, time.Second, time.Millisecond)
	assert.False(t, tm.Active())
	assert.False(t, tm.Stop(), "stopping a fired timer is a no-op")
}

func TestAfterFunc_Stop(t *testing.T) {
	l, _ := newTestLoop(t)

	var fired atomic.Bool
	tm := l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
	assert.Equal(t, 1, l.activeTimers())
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	assert.Equal(t, 0, l.activeTimers())

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, l.Call(func() {}))
	assert.False(t, fired.Load())
}

func TestEvery_RepeatsUntilStopped(t *testing.T) {
	l, _ := newTestLoop(t)

	var n atomic.Int32
	tm := l.Every(2*time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, l.Call(func() { tm.Stop() }))

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Call(func() {}))
	assert.Equal(t, after, n.Load())
}

func TestQuit_StopsTimers(t *testing.T) {
	l, errCh := newTestLoop(t)

	once := l.AfterFunc(time.Hour, func() {})
	every := l.Every(time.Hour, func() {})
	assert.Equal(t, 2, l.activeTimers())

	l.Quit(nil)
	require.NoError(t, <-errCh)
	assert.False(t, once.Active())
	assert.False(t, every.Active())
	assert.Equal(t, 0, l.activeTimers())

	late := l.AfterFunc(time.Millisecond, func() {})
	assert.False(t, late.Active())
}

func TestGo_NamesGoroutine(t *testing.T) {
	names := make(chan string, 1)
	Go(nil, "worker-1", func(ctx context.Context) {
		name, _ := pprof.Label(ctx, "goroutine_name")
		names <- name
	})
	assert.Equal(t, "worker-1", <-names)

	_, ok := pprof.Label(context.Background(), "goroutine_name")
	assert.False(t, ok)
}

func TestQuit_LogsStoppedTimers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := New(logger)

	l.AfterFunc(time.Hour, func() {})
	l.Every(time.Hour, func() {})
	l.Quit(nil)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Main loop quit", entry.Message)
	assert.Equal(t, 2, entry.Data["stopped_timers"])
	assert.Equal(t, 0, l.activeTimers())
}
