package room

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutFiresOnce(t *testing.T) {
	var calls atomic.Int32
	to := AfterFunc(5*time.Millisecond, func(*Timeout) { calls.Add(1) })

	require.Eventually(t, to.Fired, time.Second, time.Millisecond)
	assert.False(t, to.Cancellable())
	assert.False(t, to.Cancel(), "cancelling a fired task is a no-op")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTimeoutCancelIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	to := AfterFunc(20*time.Millisecond, func(*Timeout) { calls.Add(1) })

	assert.True(t, to.Cancellable())
	assert.True(t, to.Cancel())
	assert.False(t, to.Cancel())
	assert.False(t, to.Cancellable())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, to.Fired())
}

func TestTimeoutPassesItself(t *testing.T) {
	got := make(chan *Timeout, 1)
	to := AfterFunc(time.Millisecond, func(self *Timeout) { got <- self })

	select {
	case self := <-got:
		assert.Same(t, to, self)
	case <-time.After(time.Second):
		t.Fatal("timeout did not fire")
	}
}

func TestNilTimeout(t *testing.T) {
	var to *Timeout
	assert.False(t, to.Cancel())
	assert.False(t, to.Cancellable())
	assert.False(t, to.Fired())
}
