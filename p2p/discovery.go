package p2p

import (
	"context"
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

// discoverPeers returns a freshly shuffled snapshot of the peers
// advertising capability, using the cache if its shared TTL clock is
// still fresh and repopulating it otherwise. The set is always copied
// and reshuffled per call, so repeated cache hits still spread load
// across the fleet.
func (c *Client) discoverPeers(ctx context.Context, capability string) ([]peer.ID, error) {
	cached, ok := c.cache.Get(capability)
	if ok {
		return shuffled(cached), nil
	}

	raw, err := c.transport.CapabilityProviders(ctx, capability)
	if err != nil {
		return nil, err
	}
	peers := mapset.NewThreadUnsafeSet[peer.ID]()
	for p := range raw {
		peers.Add(p)
	}

	self := c.transport.PeerID()
	hadSelf := peers.Contains(self)
	peers.Remove(self)
	if !hadSelf {
		// Production must tolerate the node's own ID being absent from
		// a capability-providers reply; this is a debug-only sanity
		// check, never enforced.
		c.log.Debug("capability discovery did not include self", "capability", capability)
	}

	c.cache.Update(capability, peers)
	return shuffled(peers), nil
}

func shuffled(set mapset.Set[peer.ID]) []peer.ID {
	peers := set.ToSlice()
	rand.Shuffle(len(peers), func(i, j int) { peers[i], peers[j] = peers[j], peers[i] })
	return peers
}
