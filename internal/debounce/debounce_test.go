package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerFiresOnceAfterLastTrigger(t *testing.T) {
	sched := NewManualScheduler()
	d := New(500*time.Millisecond, sched)

	var fired []time.Duration
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired = append(fired, sched.Now()) })
		sched.Advance(200 * time.Millisecond)
	}
	assert.Empty(t, fired)
	assert.True(t, d.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, []time.Duration{1300 * time.Millisecond}, fired)
	assert.False(t, d.Pending())
	assert.Equal(t, 0, sched.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	sched := NewManualScheduler()
	d := New(300*time.Millisecond, sched)

	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Cancel()
	d.Cancel()
	sched.Advance(time.Second)

	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())
}

func TestDebouncerWallClock(t *testing.T) {
	d := New(10*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger(func() { t.Error("superseded callback ran") })
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never ran")
	}
}

func TestManualSchedulerOrdersByDeadline(t *testing.T) {
	sched := NewManualScheduler()
	var order []string
	sched.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	sched.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	stop := sched.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	assert.True(t, stop.Stop())
	assert.False(t, stop.Stop())
	sched.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)
	sched.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"a", "c"}, order)
}
