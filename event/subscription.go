// Package event implements a generic publish/subscribe feed, the same
// shape as github.com/ethereum/go-ethereum/event: producers that don't
// want to know who (if anyone) is listening push values into a Feed,
// and any number of goroutines can Subscribe to receive them.
package event

import "sync"

// Subscription represents a stream of events. The carrier of the
// events is typically a channel, but isn't part of the interface.
//
// Subscriptions can fail while in progress. The error is sent on the
// channel returned by Err. Only one value is ever sent on this
// channel. Unsubscribe cancels the sending of events and closes the
// error channel.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

// funcSub implements Subscription for a goroutine-backed unsubscribe.
type funcSub struct {
	once sync.Once
	quit chan struct{}
	err  chan error
	done chan struct{}
}

// NewSubscription runs fn in a goroutine as the backing producer for a
// Subscription. fn should watch the quit channel and return when it is
// closed, returning an error that is forwarded on Err (nil drops the
// channel closed, matching the corpus convention that a clean shutdown
// still closes Err without sending a value).
func NewSubscription(fn func(quit <-chan struct{}) error) Subscription {
	s := &funcSub{
		quit: make(chan struct{}),
		err:  make(chan error, 1),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		err := fn(s.quit)
		if err != nil {
			s.err <- err
		}
		close(s.err)
	}()
	return s
}

func (s *funcSub) Err() <-chan error { return s.err }

func (s *funcSub) Unsubscribe() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
