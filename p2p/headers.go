package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/t00ts/pathfinder/common"
)

// CapabilityHeaders is the capability name the header stream
// discovers peers under.
const CapabilityHeaders = "headers-sync"

// headerStreamPhase is one of the four explicit states this stream
// walks through instead of a yield-inside-nested-loop shape:
// Discovering (no usable peer list), Requesting (about to ask
// the current peer), Draining (consuming its response channel) and
// Advancing (bookkeeping after a header is about to be yielded).
type headerStreamPhase int

const (
	phaseDiscovering headerStreamPhase = iota
	phaseRequesting
	phaseDraining
	phaseAdvancing
)

// HeaderStream is a lazy, unbounded source of peer-attributed headers
// between start and stop. It never signals end-of-stream: Next blocks
// until it has a header to deliver or ctx is cancelled.
type HeaderStream struct {
	client    *Client
	start     common.BlockNumber
	stop      common.BlockNumber
	direction Direction

	phase   headerStreamPhase
	peers   []peer.ID
	peerIdx int
	current peer.ID
	resp    <-chan HeaderResponse
	pending PeerData[SignedHeader]
}

// NewHeaderStream builds a stream walking from start up to stop. If
// reverse is true the walk is Backward instead, from stop down to
// start.
func NewHeaderStream(client *Client, start, stop common.BlockNumber, reverse bool) *HeaderStream {
	s := &HeaderStream{client: client, phase: phaseDiscovering}
	if reverse {
		s.start, s.stop, s.direction = stop, start, Backward
	} else {
		s.start, s.stop, s.direction = start, stop, Forward
	}
	return s
}

// Next blocks until a header is available from some peer, or ctx is
// cancelled. It never returns a "finished" signal: exhausting every
// known peer re-enters discovery instead of ending the stream.
func (s *HeaderStream) Next(ctx context.Context) (PeerData[SignedHeader], error) {
	for {
		if err := ctx.Err(); err != nil {
			return PeerData[SignedHeader]{}, err
		}

		switch s.phase {
		case phaseDiscovering:
			peers, err := s.client.discoverPeers(ctx, CapabilityHeaders)
			if err != nil {
				return PeerData[SignedHeader]{}, fmt.Errorf("p2p: discover header peers: %w", err)
			}
			s.peers, s.peerIdx, s.phase = peers, 0, phaseRequesting

		case phaseRequesting:
			if s.peerIdx >= len(s.peers) {
				s.phase = phaseDiscovering
				continue
			}
			s.current = s.peers[s.peerIdx]
			limit := s.limit()
			req := BlockHeadersRequest{Iteration: Iteration{Start: s.requestStart(), Direction: s.direction, Limit: limit, Step: 1}}
			resp, err := s.client.transport.SendHeadersSyncRequest(ctx, s.current, req)
			if err != nil {
				s.client.log.Debug("headers request failed", "peer", s.current, "err", err)
				s.client.warnOnRepeatedFailure(s.current)
				s.peerIdx++
				continue
			}
			s.resp = resp
			s.phase = phaseDraining

		case phaseDraining:
			select {
			case <-ctx.Done():
				return PeerData[SignedHeader]{}, ctx.Err()
			case frame, ok := <-s.resp:
				if !ok {
					s.client.log.Debug("headers stream closed without Fin", "peer", s.current)
					s.peerIdx++
					s.phase = phaseRequesting
					continue
				}
				switch f := frame.(type) {
				case HeaderResponseFin:
					s.client.log.Debug("headers stream Fin", "peer", s.current)
					s.client.failures.recordSuccess(s.current)
					s.peerIdx++
					s.phase = phaseRequesting
				case HeaderResponseHeader:
					if f.Header.Number != s.start {
						s.client.log.Debug("malformed header, rotating", "peer", s.current, "want", s.start, "got", f.Header.Number)
						s.client.warnOnRepeatedFailure(s.current)
						s.peerIdx++
						s.phase = phaseRequesting
						continue
					}
					s.pending = PeerData[SignedHeader]{Peer: s.current, Data: f.Header}
					s.phase = phaseAdvancing
				}
			}

		case phaseAdvancing:
			if s.direction == Forward {
				s.start = s.start.Next()
			} else {
				s.start, _ = s.start.PrevOrAbsent()
			}
			s.phase = phaseDraining
			return s.pending, nil
		}
	}
}

func (s *HeaderStream) requestStart() common.BlockNumber {
	return s.start
}

func (s *HeaderStream) limit() uint64 {
	if s.start >= s.stop {
		return uint64(s.start - s.stop)
	}
	return uint64(s.stop - s.start)
}
