package sync

import (
	"sync"

	"github.com/t00ts/pathfinder/event"
	"github.com/t00ts/pathfinder/felt"
)

// Status is the node's advertised sync state: either not yet started
// (False) or actively tracking a [starting, current, highest] window
// of block hashes.
type Status struct {
	Syncing  bool
	Starting felt.Felt
	Current  felt.Felt
	Highest  felt.Felt
}

// StatusCell is the shared mutable sync status cell: the driver
// writes Current, the publisher writes Highest, readers take a
// consistent snapshot under a read lock. Every transition is also
// broadcast on feed, so callers that want to react to status changes
// (an RPC's sync-state subscription, for instance) don't have to poll
// Snapshot.
type StatusCell struct {
	mu     sync.RWMutex
	status Status
	feed   event.Feed[Status]
}

// Snapshot returns the current status.
func (c *StatusCell) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Subscribe registers ch to receive every future status transition.
func (c *StatusCell) Subscribe(ch chan<- Status) event.Subscription {
	return c.feed.Subscribe(ch)
}

// SetCurrent updates the current block hash, transitioning out of
// False if this is the first write (mirrors the publisher's own
// False->Status transition, so whichever side writes first establishes
// the Syncing window).
func (c *StatusCell) SetCurrent(hash felt.Felt) {
	c.mu.Lock()
	if !c.status.Syncing {
		c.status = Status{Syncing: true, Starting: hash, Current: hash, Highest: hash}
	} else {
		c.status.Current = hash
	}
	snapshot := c.status
	c.mu.Unlock()
	c.feed.Send(snapshot)
}

// ObservePublisherTick applies one publisher cycle's result: the
// False->Status transition on first success, or a Highest update
// thereafter.
func (c *StatusCell) ObservePublisherTick(latest felt.Felt) {
	c.mu.Lock()
	if !c.status.Syncing {
		c.status = Status{Syncing: true, Starting: latest, Current: latest, Highest: latest}
	} else {
		c.status.Highest = latest
	}
	snapshot := c.status
	c.mu.Unlock()
	c.feed.Send(snapshot)
}
