package p2p

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

// DefaultCapabilityTTL is the freshness window for the whole
// capability->peers map.
const DefaultCapabilityTTL = 60 * time.Second

// PeersWithCapability caches capability->peer-set lookups behind a
// single shared TTL clock for the entire map, not one per capability:
// every Update resets the clock for all entries, and once the most
// recent Update is older than the TTL every capability reports
// missing at once, however recently its own entry was set. This matches the source
// exactly (see DESIGN.md) and is simpler than per-capability timers.
type PeersWithCapability struct {
	mu         sync.RWMutex
	ttl        time.Duration
	lastUpdate time.Time
	set        map[string]mapset.Set[peer.ID]
}

// NewPeersWithCapability builds an empty cache with the given TTL.
func NewPeersWithCapability(ttl time.Duration) *PeersWithCapability {
	return &PeersWithCapability{ttl: ttl, set: make(map[string]mapset.Set[peer.ID])}
}

// Get returns a copy of the cached peer set for capability, only if
// the shared clock is still fresh. A stale or absent clock reports
// "missing" and the caller must repopulate the entire map via Update.
func (c *PeersWithCapability) Get(capability string) (mapset.Set[peer.ID], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastUpdate.IsZero() || time.Since(c.lastUpdate) > c.ttl {
		return nil, false
	}
	peers, ok := c.set[capability]
	if !ok {
		return nil, false
	}
	return peers.Clone(), true
}

// Update replaces the peer set for capability and resets the shared
// TTL clock for the whole map.
func (c *PeersWithCapability) Update(capability string, peers mapset.Set[peer.ID]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUpdate = time.Now()
	c.set[capability] = peers.Clone()
}
