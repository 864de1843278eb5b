package onboarding

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsStepsInOrder(t *testing.T) {
	sched := NewScheduler()
	var order []int
	done := make(chan struct{})

	sched.Run([]Step{
		{Delay: time.Millisecond, Action: func() { order = append(order, 1) }},
		{Delay: time.Millisecond, Action: func() { order = append(order, 2) }},
		{Delay: time.Millisecond, Action: func() { order = append(order, 3); close(done) }},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("script did not complete")
	}
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSchedulerCancelStopsPendingSteps(t *testing.T) {
	sched := NewScheduler()
	var fired atomic.Int32

	sched.Run([]Step{
		{Delay: 50 * time.Millisecond, Action: func() { fired.Add(1) }},
	})
	sched.Cancel()
	sched.Wait()

	assert.Equal(t, int32(0), fired.Load())
}

func TestSchedulerNewScriptSupersedesOld(t *testing.T) {
	sched := NewScheduler()
	var stale atomic.Int32
	done := make(chan struct{})

	sched.Run([]Step{
		{Delay: 50 * time.Millisecond, Action: func() { stale.Add(1) }},
	})
	sched.Run([]Step{
		{Delay: time.Millisecond, Action: func() { close(done) }},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replacement script did not run")
	}
	sched.Cancel()
	sched.Wait()
	assert.Equal(t, int32(0), stale.Load())
}
