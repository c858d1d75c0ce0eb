package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_RunsOnlyLastCall(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var last atomic.Int64
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	for i := 1; i <= 5; i++ {
		d.Trigger(func(context.Context) {
			last.Store(int64(i))
			calls.Add(1)
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	d.Stop()

	assert.EqualValues(t, 5, last.Load())
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(10 * time.Millisecond)

	var fired atomic.Bool
	d.Trigger(func(context.Context) { fired.Store(true) })
	d.Cancel()

	time.Sleep(50 * time.Millisecond)
	d.Stop()
	assert.False(t, fired.Load())
}

func TestDebouncer_StopWaitsForRunningCall(t *testing.T) {
	d := New(time.Millisecond)

	started := make(chan struct{})
	var finished atomic.Bool
	d.Trigger(func(context.Context) {
		close(started)
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	d.Stop()
	assert.True(t, finished.Load())
}

func TestDebouncer_NewTriggerCancelsRunningContext(t *testing.T) {
	d := New(time.Millisecond)
	defer d.Stop()

	cancelled := make(chan struct{})
	started := make(chan struct{})
	d.Trigger(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})
	<-started

	d.Trigger(func(context.Context) {})

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running call was not cancelled")
	}
}

func TestDebouncer_TriggerAfterStopIsIgnored(t *testing.T) {
	d := New(time.Millisecond)
	d.Stop()

	var fired atomic.Bool
	d.Trigger(func(context.Context) { fired.Store(true) })

	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestDebouncer_FlushRunsPendingNow(t *testing.T) {
	d := New(time.Hour)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger(func(context.Context) { calls.Add(1) })
	d.Flush()
	assert.EqualValues(t, 1, calls.Load())

	d.Flush()
	assert.EqualValues(t, 1, calls.Load())
}
