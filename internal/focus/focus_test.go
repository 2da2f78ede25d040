package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverWhileFocused(t *testing.T) {
	tracker := NewTracker()
	lease := tracker.Focus()

	ran := false
	assert.True(t, lease.Deliver(func() { ran = true }))
	assert.True(t, ran)
	assert.True(t, lease.Active())
}

func TestBlurDropsPendingResult(t *testing.T) {
	tracker := NewTracker()
	lease := tracker.Focus()
	tracker.Blur()

	ran := false
	assert.False(t, lease.Deliver(func() { ran = true }))
	assert.False(t, ran)
}

func TestRefocusInvalidatesOlderLease(t *testing.T) {
	tracker := NewTracker()
	first := tracker.Focus()
	tracker.Blur()
	second := tracker.Focus()

	assert.False(t, first.Active())
	assert.True(t, second.Active())
	assert.Equal(t, second.Generation(), tracker.Generation())
	assert.True(t, tracker.LeaseFor(second.Generation()).Active())
	assert.False(t, tracker.LeaseFor(first.Generation()).Active())
}

func TestZeroLeaseNeverDelivers(t *testing.T) {
	var lease Lease
	assert.False(t, lease.Deliver(func() {}))
	assert.False(t, lease.Active())
}

func TestRegistryKeepsOneTrackerPerScreen(t *testing.T) {
	reg := NewRegistry()
	cart := reg.Tracker("cart")
	assert.Same(t, cart, reg.Tracker(" cart "))
	assert.NotSame(t, cart, reg.Tracker("favorites"))

	lease := cart.Focus()
	reg.Tracker("favorites").Focus()
	assert.True(t, lease.Active())
}

func TestDeliverDoesNotHoldTrackerWhileRunning(t *testing.T) {
	tracker := NewTracker()
	lease := tracker.Focus()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan bool)
	go func() {
		done <- lease.Deliver(func() {
			close(started)
			<-release
		})
	}()
	<-started

	focused := make(chan Lease)
	go func() { focused <- tracker.Focus() }()
	select {
	case next := <-focused:
		assert.True(t, next.Active())
	case <-time.After(2 * time.Second):
		t.Fatal("Focus blocked behind a running delivery")
	}
	close(release)
	assert.True(t, <-done)
	assert.False(t, lease.Active())
}

func TestDeliverCanReenterTracker(t *testing.T) {
	tracker := NewTracker()
	lease := tracker.Focus()

	var generation uint64
	require.True(t, lease.Deliver(func() { generation = tracker.Generation() }))
	assert.Equal(t, lease.Generation(), generation)
}

func TestLookupDoesNotCreateTrackers(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Lookup("cart")
	assert.False(t, ok)
	assert.Zero(t, reg.Len())

	cart := reg.Tracker("cart")
	got, ok := reg.Lookup(" cart ")
	require.True(t, ok)
	assert.Same(t, cart, got)
	assert.Equal(t, 1, reg.Len())
}
