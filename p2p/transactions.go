package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
)

// CapabilityTransactions is the capability name the transaction
// stream discovers peers under.
const CapabilityTransactions = "transactions-sync"

type transactionStreamPhase int

const (
	txPhaseDiscovering transactionStreamPhase = iota
	txPhaseRequesting
	txPhaseDraining
)

// TransactionStream lazily fetches every transaction of one block,
// rotating to the next peer whenever the current one fails or sends a
// malformed element, and rotating again after a successful delivery
// so repeated calls spread load across the fleet.
type TransactionStream struct {
	client *Client
	block  common.BlockNumber

	phase   transactionStreamPhase
	peers   []peer.ID
	peerIdx int
	current peer.ID
	resp    <-chan TransactionResponse
	acc     []types.Transaction
}

// NewTransactionStream builds a stream for the transactions of block.
func NewTransactionStream(client *Client, block common.BlockNumber) *TransactionStream {
	return &TransactionStream{client: client, block: block, phase: txPhaseDiscovering}
}

// Next blocks until the full transaction list for the stream's block
// is available from some peer, or ctx is cancelled.
func (s *TransactionStream) Next(ctx context.Context) (PeerData[[]types.Transaction], error) {
	for {
		if err := ctx.Err(); err != nil {
			return PeerData[[]types.Transaction]{}, err
		}

		switch s.phase {
		case txPhaseDiscovering:
			peers, err := s.client.discoverPeers(ctx, CapabilityTransactions)
			if err != nil {
				return PeerData[[]types.Transaction]{}, fmt.Errorf("p2p: discover transaction peers: %w", err)
			}
			s.peers, s.peerIdx, s.phase = peers, 0, txPhaseRequesting

		case txPhaseRequesting:
			if s.peerIdx >= len(s.peers) {
				s.phase = txPhaseDiscovering
				continue
			}
			s.current = s.peers[s.peerIdx]
			req := TransactionsRequest{Iteration: Iteration{Start: s.block, Direction: Forward, Limit: 1, Step: 1}}
			resp, err := s.client.transport.SendTransactionsSyncRequest(ctx, s.current, req)
			if err != nil {
				s.client.log.Debug("transactions request failed", "peer", s.current, "err", err)
				s.client.warnOnRepeatedFailure(s.current)
				s.peerIdx++
				continue
			}
			s.resp = resp
			s.acc = nil
			s.phase = txPhaseDraining

		case txPhaseDraining:
			select {
			case <-ctx.Done():
				return PeerData[[]types.Transaction]{}, ctx.Err()
			case frame, ok := <-s.resp:
				if !ok {
					s.client.log.Debug("transactions stream closed without Fin", "peer", s.current)
					s.peerIdx++
					s.phase = txPhaseRequesting
					continue
				}
				switch f := frame.(type) {
				case TransactionResponseFin:
					s.client.log.Debug("transactions stream Fin", "peer", s.current, "count", len(s.acc))
					s.client.failures.recordSuccess(s.current)
					out := PeerData[[]types.Transaction]{Peer: s.current, Data: s.acc}
					s.acc = nil
					s.peerIdx++
					s.phase = txPhaseRequesting
					return out, nil
				case TransactionResponseTransaction:
					if f.Transaction.Hash.IsZero() {
						s.client.log.Debug("malformed transaction, rotating", "peer", s.current)
						s.client.warnOnRepeatedFailure(s.current)
						s.acc = nil
						s.peerIdx++
						s.phase = txPhaseRequesting
						continue
					}
					s.acc = append(s.acc, f.Transaction)
				}
			}
		}
	}
}
