package p2p

import (
	"context"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

func TestTransactionStreamAccumulatesUntilFin(t *testing.T) {
	self := peer.ID("self")
	a := peer.ID("peer-a")
	ft := newFakeTransport(self)
	ft.providers[CapabilityTransactions] = map[peer.ID]struct{}{a: {}}
	ft.txFrames[a] = []TransactionResponse{
		TransactionResponseTransaction{Transaction: types.Transaction{Hash: felt.FromUint64(1)}},
		TransactionResponseTransaction{Transaction: types.Transaction{Hash: felt.FromUint64(2)}},
		TransactionResponseFin{},
	}

	c := newTestClient(ft)
	s := c.TransactionStream(common.Genesis)

	pd, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, a, pd.Peer)
	require.Len(t, pd.Data, 2)
}

func TestTransactionStreamDiscardsPartialOnMalformedElement(t *testing.T) {
	self := peer.ID("self")
	bad := peer.ID("peer-bad")
	good := peer.ID("peer-good")
	ft := newFakeTransport(self)
	ft.providers[CapabilityTransactions] = map[peer.ID]struct{}{bad: {}, good: {}}
	ft.txFrames[bad] = []TransactionResponse{
		TransactionResponseTransaction{Transaction: types.Transaction{Hash: felt.FromUint64(1)}},
		TransactionResponseTransaction{Transaction: types.Transaction{}}, // zero hash: malformed
	}
	ft.txFrames[good] = []TransactionResponse{
		TransactionResponseTransaction{Transaction: types.Transaction{Hash: felt.FromUint64(9)}},
		TransactionResponseFin{},
	}

	c := newTestClient(ft)
	s := c.TransactionStream(common.Genesis)

	pd, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, good, pd.Peer)
	require.Len(t, pd.Data, 1)
}

func TestTransactionStreamRotatesAfterSuccess(t *testing.T) {
	self := peer.ID("self")
	a := peer.ID("peer-a")
	b := peer.ID("peer-b")
	ft := newFakeTransport(self)
	ft.providers[CapabilityTransactions] = map[peer.ID]struct{}{a: {}, b: {}}
	ft.txFrames[a] = []TransactionResponse{TransactionResponseFin{}}
	ft.txFrames[b] = []TransactionResponse{TransactionResponseFin{}}

	c := newTestClient(ft)
	s := c.TransactionStream(common.Genesis)

	first, err := s.Next(context.Background())
	require.NoError(t, err)
	second, err := s.Next(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first.Peer, second.Peer)
}
