package event

import "sync"

// SubscriptionScope provides a facility to unsubscribe multiple
// subscriptions at once, the same convenience go-ethereum's services
// use to tear down all their feed subscriptions on Stop() without
// tracking each one individually.
type SubscriptionScope struct {
	mu     sync.Mutex
	subs   map[*scopeSub]struct{}
	closed bool
}

type scopeSub struct {
	sc *SubscriptionScope
	s  Subscription
}

// Track starts tracking a subscription. If the scope is closed, Track
// returns nil and unsubscribes s immediately.
func (sc *SubscriptionScope) Track(s Subscription) Subscription {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		s.Unsubscribe()
		return nil
	}
	if sc.subs == nil {
		sc.subs = make(map[*scopeSub]struct{})
	}
	ss := &scopeSub{sc: sc, s: s}
	sc.subs[ss] = struct{}{}
	return ss
}

// Close calls Unsubscribe on all tracked subscriptions and prevents
// further calls to Track from doing anything.
func (sc *SubscriptionScope) Close() {
	sc.mu.Lock()
	if sc.closed {
		sc.mu.Unlock()
		return
	}
	sc.closed = true
	subs := sc.subs
	sc.subs = nil
	sc.mu.Unlock()

	for ss := range subs {
		ss.s.Unsubscribe()
	}
}

// Count returns the number of tracked subscriptions.
func (sc *SubscriptionScope) Count() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.subs)
}

func (ss *scopeSub) Err() <-chan error { return ss.s.Err() }

func (ss *scopeSub) Unsubscribe() {
	ss.s.Unsubscribe()
	ss.sc.mu.Lock()
	delete(ss.sc.subs, ss)
	ss.sc.mu.Unlock()
}
