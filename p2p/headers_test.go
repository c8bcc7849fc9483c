package p2p

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/felt"
)

func newTestClient(transport Transport) *Client {
	return NewClient(transport, "test/new-head/1")
}

func TestHeaderStreamDeliversAndAdvancesForward(t *testing.T) {
	self := peer.ID("self")
	a := peer.ID("peer-a")
	ft := newFakeTransport(self)
	ft.providers[CapabilityHeaders] = map[peer.ID]struct{}{a: {}}
	ft.headerFrames[a] = []HeaderResponse{
		HeaderResponseHeader{Header: SignedHeader{Number: 0, Hash: felt.FromUint64(1)}},
		HeaderResponseHeader{Header: SignedHeader{Number: 1, Hash: felt.FromUint64(2)}},
		HeaderResponseFin{},
	}

	c := newTestClient(ft)
	s := c.HeaderStream(common.Genesis, common.BlockNumber(2), false)

	ctx := context.Background()
	h0, err := s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, a, h0.Peer)
	require.Equal(t, common.BlockNumber(0), h0.Data.Number)

	h1, err := s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, common.BlockNumber(1), h1.Data.Number)
}

func TestHeaderStreamRotatesOnMalformedHeader(t *testing.T) {
	self := peer.ID("self")
	bad := peer.ID("peer-bad")
	good := peer.ID("peer-good")
	ft := newFakeTransport(self)
	ft.providers[CapabilityHeaders] = map[peer.ID]struct{}{bad: {}, good: {}}
	// bad claims to be at height 5 when the stream expects 0: malformed.
	ft.headerFrames[bad] = []HeaderResponse{HeaderResponseHeader{Header: SignedHeader{Number: 5}}}
	ft.headerFrames[good] = []HeaderResponse{
		HeaderResponseHeader{Header: SignedHeader{Number: 0}},
		HeaderResponseFin{},
	}

	c := newTestClient(ft)
	s := c.HeaderStream(common.Genesis, common.BlockNumber(1), false)

	h, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, good, h.Peer)
	require.Equal(t, 1, ft.headerCalls[bad])
}

func TestHeaderStreamRotatesOnTransportError(t *testing.T) {
	self := peer.ID("self")
	down := peer.ID("peer-down")
	up := peer.ID("peer-up")
	ft := newFakeTransport(self)
	ft.providers[CapabilityHeaders] = map[peer.ID]struct{}{down: {}, up: {}}
	ft.headerErr[down] = errors.New("connection refused")
	ft.headerFrames[up] = []HeaderResponse{
		HeaderResponseHeader{Header: SignedHeader{Number: 0}},
		HeaderResponseFin{},
	}

	c := newTestClient(ft)
	s := c.HeaderStream(common.Genesis, common.BlockNumber(1), false)

	h, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, up, h.Peer)
}

// TestHeaderStreamPeerRotationLiveness covers testable property 5: if
// every peer in a capability set fails, the stream keeps cycling
// through Discovering/Requesting (zero forward progress) rather than
// wedging on one peer — and it still observes context cancellation
// from inside that cycle instead of spinning forever.
func TestHeaderStreamPeerRotationLiveness(t *testing.T) {
	self := peer.ID("self")
	a := peer.ID("peer-a")
	b := peer.ID("peer-b")
	ft := newFakeTransport(self)
	ft.providers[CapabilityHeaders] = map[peer.ID]struct{}{a: {}, b: {}}
	ft.headerErr[a] = errors.New("timeout")
	ft.headerErr[b] = errors.New("timeout")

	c := newTestClient(ft)
	s := c.HeaderStream(common.Genesis, common.BlockNumber(1), false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, ft.headerCalls[a]+ft.headerCalls[b], 1)
}
