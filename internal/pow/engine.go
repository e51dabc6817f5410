package pow

import "context"

// Engine searches for a nonce in blocking mode.
//
// Given prefix, suffix and a difficulty, Search returns a nonce such that
// SHA-256(prefix + nonce + suffix) has at least difficulty leading zero bits.
// Any error is returned to the caller of the proof-of-work operation as is.
//
// The context belongs to the engine: the core passes it through and never
// cancels a dispatched search itself.
type Engine interface {
	Search(ctx context.Context, prefix, suffix []byte, difficulty uint) (string, error)
}

// AsyncEngine searches for a nonce without blocking the caller.
//
// SearchAsync returns an error only if the search could not be dispatched.
// Otherwise it must call done exactly once, from any goroutine, with either
// a nonce or an error.
type AsyncEngine interface {
	SearchAsync(ctx context.Context, prefix, suffix []byte, difficulty uint, done func(nonce string, err error)) error
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, prefix, suffix []byte, difficulty uint) (string, error)

// Search calls f.
func (f EngineFunc) Search(ctx context.Context, prefix, suffix []byte, difficulty uint) (string, error) {
	return f(ctx, prefix, suffix, difficulty)
}

// AsyncFrom runs a blocking engine on its own goroutine.
// If e already implements AsyncEngine it is returned unchanged.
func AsyncFrom(e Engine) AsyncEngine {
	if ae, ok := e.(AsyncEngine); ok {
		return ae
	}
	return goroutineEngine{engine: e}
}

type goroutineEngine struct {
	engine Engine
}

func (g goroutineEngine) SearchAsync(ctx context.Context, prefix, suffix []byte, difficulty uint, done func(string, error)) error {
	go func() {
		done(g.engine.Search(ctx, prefix, suffix, difficulty))
	}()
	return nil
}
