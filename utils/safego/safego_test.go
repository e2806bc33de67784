package safego

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInsert_SucceedsOnOpenChannel(t *testing.T) {
	ch := make(chan int, 1)
	ok := Insert(ch, 7)
	assert.True(t, ok)
	assert.Equal(t, 7, <-ch)
}

func TestInsert_RecoversFromSendOnClosedChannel(t *testing.T) {
	ch := make(chan int, 1)
	close(ch)
	ok := Insert(ch, 1)
	assert.False(t, ok, "send on a closed channel panics and Insert should recover, reporting failure")
}

func TestClose_ClosesTheChannelAsynchronously(t *testing.T) {
	ch := make(chan int)
	Close(ch)

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed in time")
	}
}

func TestRun_ExecutesFunctionInGoroutine(t *testing.T) {
	done := make(chan struct{})
	Run(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not execute the function")
	}
}

func TestRun_RecoversFromPanicWithoutCrashingProcess(t *testing.T) {
	recovered := make(chan struct{})
	prev := GlobalRecoverHandler
	GlobalRecoverHandler = func(_ interface{}) { close(recovered) }
	defer func() { GlobalRecoverHandler = prev }()

	Run(func() { panic("boom") })

	select {
	case <-recovered:
	case <-time.After(time.Second):
		t.Fatal("panic was not recovered")
	}
}
