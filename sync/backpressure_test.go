package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCapacityOneChannelBlocksSecondSend demonstrates the backpressure
// the driver relies on: with the capacity-1 channels L1ProducerFactory
// and L2ProducerFactory are documented to return, a producer that
// enqueues a second event before the driver has consumed the first
// blocks until that consumption happens. This is what lets "commit
// before producer advances" ordering hold without any explicit
// acknowledgement protocol between producer and driver.
func TestCapacityOneChannelBlocksSecondSend(t *testing.T) {
	ch := make(chan L1Event, 1)

	ch <- L1Update{Logs: nil}

	sent := make(chan struct{})
	go func() {
		ch <- L1Update{Logs: nil} // must block: slot is still occupied
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("second send on a full capacity-1 channel must block")
	case <-time.After(50 * time.Millisecond):
	}

	<-ch // driver-side consumption of the first event

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("second send did not unblock after the first was consumed")
	}
	require.True(t, true)
}
