// Package p2p implements the peer-agnostic P2P client: lazy header and
// transaction streams sourced from a capability-addressed peer set,
// with peer rotation on any fault and periodic rediscovery. The raw
// libp2p protocol handlers, stream encoding and gossipsub plumbing are
// out of scope — this package only consumes the Transport interface
// they'd implement.
package p2p

import "github.com/libp2p/go-libp2p/core/peer"

// PeerData pairs a piece of gossip-sourced data with the peer that
// produced it, so callers can attribute faults back to a specific peer.
type PeerData[T any] struct {
	Peer peer.ID
	Data T
}
