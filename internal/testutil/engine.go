package testutil

import (
	"context"
	"sync"
)

// Call records one engine invocation.
type Call struct {
	Prefix     []byte
	Suffix     []byte
	Difficulty uint
}

// recorder keeps the calls an engine received.
type recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recorder) record(prefix, suffix []byte, difficulty uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{
		Prefix:     append([]byte(nil), prefix...),
		Suffix:     append([]byte(nil), suffix...),
		Difficulty: difficulty,
	})
}

// Calls returns a copy of the recorded calls.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// FixedEngine returns the same nonce for every search, ignoring difficulty.
//
// Thread-safety: safe for concurrent use.
type FixedEngine struct {
	recorder
	Nonce string
}

// NewFixedEngine creates an engine that always answers nonce.
func NewFixedEngine(nonce string) *FixedEngine {
	return &FixedEngine{Nonce: nonce}
}

// Search returns the fixed nonce.
func (e *FixedEngine) Search(_ context.Context, prefix, suffix []byte, difficulty uint) (string, error) {
	e.record(prefix, suffix, difficulty)
	return e.Nonce, nil
}

// SearchAsync calls done with the fixed nonce from a new goroutine.
func (e *FixedEngine) SearchAsync(_ context.Context, prefix, suffix []byte, difficulty uint, done func(string, error)) error {
	e.record(prefix, suffix, difficulty)
	go done(e.Nonce, nil)
	return nil
}

// FailingEngine reports Err from every search.
type FailingEngine struct {
	recorder
	Err error
}

// NewFailingEngine creates an engine that always fails with err.
func NewFailingEngine(err error) *FailingEngine {
	return &FailingEngine{Err: err}
}

// Search returns the configured error.
func (e *FailingEngine) Search(_ context.Context, prefix, suffix []byte, difficulty uint) (string, error) {
	e.record(prefix, suffix, difficulty)
	return "", e.Err
}

// SearchAsync calls done with the configured error from a new goroutine.
func (e *FailingEngine) SearchAsync(_ context.Context, prefix, suffix []byte, difficulty uint, done func(string, error)) error {
	e.record(prefix, suffix, difficulty)
	go done("", e.Err)
	return nil
}

// DispatchErrorEngine refuses to start asynchronous searches.
type DispatchErrorEngine struct {
	recorder
	Err error
}

// SearchAsync returns Err without ever calling done.
func (e *DispatchErrorEngine) SearchAsync(_ context.Context, prefix, suffix []byte, difficulty uint, _ func(string, error)) error {
	e.record(prefix, suffix, difficulty)
	return e.Err
}

// RepeatingEngine misbehaves by completing every search several times.
// The first completion carries Nonces[0], the next Nonces[1] and so on.
type RepeatingEngine struct {
	recorder
	Nonces []string

	// Finished is closed after the last callback has returned.
	Finished chan struct{}
}

// NewRepeatingEngine creates an engine that calls back once per nonce.
func NewRepeatingEngine(nonces ...string) *RepeatingEngine {
	return &RepeatingEngine{Nonces: nonces, Finished: make(chan struct{})}
}

// SearchAsync calls done once for every configured nonce, in order.
func (e *RepeatingEngine) SearchAsync(_ context.Context, prefix, suffix []byte, difficulty uint, done func(string, error)) error {
	e.record(prefix, suffix, difficulty)
	go func() {
		defer close(e.Finished)
		for _, n := range e.Nonces {
			done(n, nil)
		}
	}()
	return nil
}

// BlockingEngine waits until Release is closed or ctx is done.
// It lets tests observe an operation while the search is in flight.
type BlockingEngine struct {
	recorder
	Nonce   string
	Started chan struct{}
	Release chan struct{}

	startOnce sync.Once
}

// NewBlockingEngine creates an engine that answers nonce once released.
func NewBlockingEngine(nonce string) *BlockingEngine {
	return &BlockingEngine{
		Nonce:   nonce,
		Started: make(chan struct{}),
		Release: make(chan struct{}),
	}
}

// Search blocks until released.
func (e *BlockingEngine) Search(ctx context.Context, prefix, suffix []byte, difficulty uint) (string, error) {
	e.record(prefix, suffix, difficulty)
	e.startOnce.Do(func() { close(e.Started) })
	select {
	case <-e.Release:
		return e.Nonce, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
