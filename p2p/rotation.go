package p2p

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

// failureThreshold is the consecutive-failure count at which a peer's
// persistent misbehavior is escalated from Debug to Warn. It gates
// nothing: rediscovery stays TTL/emptiness-gated only, so a
// consistently bad peer is still retried every discovery round — this
// bookkeeping exists purely to make that pattern visible
// in logs instead of drowning in per-attempt Debug lines.
const failureThreshold = 3

// peerFailures bounds per-peer consecutive-failure bookkeeping so a
// churning peer set never grows this map without limit.
type peerFailures struct {
	counts *lru.Cache[peer.ID, int]
}

func newPeerFailures() *peerFailures {
	c, _ := lru.New[peer.ID, int](1024)
	return &peerFailures{counts: c}
}

func (f *peerFailures) recordFailure(p peer.ID) int {
	n, _ := f.counts.Get(p)
	n++
	f.counts.Add(p, n)
	return n
}

func (f *peerFailures) recordSuccess(p peer.ID) {
	f.counts.Remove(p)
}

// warnOnRepeatedFailure records one failed attempt against p and
// escalates to a Warn log once it has failed failureThreshold times in
// a row, instead of letting a persistently bad peer drown in per-
// attempt Debug lines.
func (c *Client) warnOnRepeatedFailure(p peer.ID) {
	if n := c.failures.recordFailure(p); n >= failureThreshold {
		c.log.Warn("peer failing repeatedly", "peer", p, "consecutiveFailures", n)
	}
}
