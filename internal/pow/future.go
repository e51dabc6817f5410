package pow

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// Future is the single-resolution result of ComputeProofOfWorkAsync.
//
// It resolves exactly once with either a finished event or an error.
// Thread-safety: all methods are safe for concurrent use.
type Future struct {
	done  chan struct{}
	once  sync.Once
	event nostr.Event
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve stores the outcome. Only the first call has any effect; it
// reports whether this call was the one that resolved the future.
func (f *Future) resolve(ev nostr.Event, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.event = ev
		f.err = err
		resolved = true
		close(f.done)
	})
	return resolved
}

// Done returns a channel that is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done.
// A ctx error only stops the wait; the search itself keeps running.
func (f *Future) Wait(ctx context.Context) (nostr.Event, error) {
	select {
	case <-f.done:
		return f.event, f.err
	case <-ctx.Done():
		return nostr.Event{}, ctx.Err()
	}
}

// Result blocks until the future resolves.
func (f *Future) Result() (nostr.Event, error) {
	<-f.done
	return f.event, f.err
}
