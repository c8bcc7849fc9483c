package event

import "sync"

// Feed implements one-to-many notification: a single producer Send()s
// values of type T, and any number of goroutines can Subscribe to
// receive a copy of each one. It is the generic successor to
// go-ethereum's reflection-based Feed — chosen here over the original
// because the sync status publisher only ever needs to broadcast one
// concrete type (sync.Status), so the type-safety and lack of
// reflect-driven panics are worth the (small) loss of the reflection
// variant's ability to host arbitrary channel types on one Feed value.
//
// The zero value is ready to use. A Feed must not be copied after
// first use.
type Feed[T any] struct {
	mu   sync.Mutex
	subs map[*feedSub[T]]struct{}
}

type feedSub[T any] struct {
	feed    *Feed[T]
	channel chan<- T
	once    sync.Once
	err     chan error
}

// Subscribe adds a channel to the feed. Future sends will be delivered
// on the returned Subscription's channel until it is unsubscribed.
func (f *Feed[T]) Subscribe(channel chan<- T) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[*feedSub[T]]struct{})
	}
	sub := &feedSub[T]{feed: f, channel: channel, err: make(chan error, 1)}
	f.subs[sub] = struct{}{}
	return sub
}

// Send delivers a value to all current subscribers, blocking until
// every subscriber's channel has accepted it. It returns the number of
// subscribers that received the value.
func (f *Feed[T]) Send(value T) int {
	f.mu.Lock()
	subs := make([]*feedSub[T], 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.channel <- value
	}
	return len(subs)
}

func (s *feedSub[T]) Err() <-chan error { return s.err }

func (s *feedSub[T]) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
		close(s.err)
	})
}
