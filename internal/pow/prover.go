package pow

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/nostrpow/internal/event"
)

// Prover runs the prepare → search → finish protocol against an engine.
//
// Ordering guarantees per operation:
//   - difficulty is validated before any serialization
//   - the split is complete before the engine is invoked
//   - the finisher runs only after the engine has returned a nonce
//
// The caller's event is never modified; results are independent copies.
// Thread-safety: a Prover is safe for concurrent use if its engines are.
type Prover struct {
	engine            Engine
	async             AsyncEngine
	logger            *logrus.Entry
	maxMarkerAttempts int
	newOperationID    func() string
	telemetry         *telemetry
}

// Option configures a Prover.
type Option func(*Prover)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(p *Prover) {
		p.logger = logger
	}
}

// WithAsyncEngine sets the engine used by ComputeProofOfWorkAsync.
// Defaults to AsyncFrom(engine).
func WithAsyncEngine(engine AsyncEngine) Option {
	return func(p *Prover) {
		p.async = engine
	}
}

// WithMaxMarkerAttempts bounds the placeholder marker search.
//
// Default: DefaultMaxMarkerAttempts
// Use WithMaxMarkerAttempts(2) for testing marker exhaustion.
func WithMaxMarkerAttempts(n int) Option {
	return func(p *Prover) {
		p.maxMarkerAttempts = n
	}
}

// WithOperationID overrides the generator for the "op" log field.
// Defaults to UUIDv7; tests use a fixed value.
func WithOperationID(gen func() string) Option {
	return func(p *Prover) {
		p.newOperationID = gen
	}
}

// New creates a Prover backed by engine. engine may be nil if only the
// asynchronous path is used and WithAsyncEngine is given.
func New(engine Engine, opts ...Option) *Prover {
	p := &Prover{
		engine:            engine,
		logger:            logrus.NewEntry(logrus.StandardLogger()),
		maxMarkerAttempts: DefaultMaxMarkerAttempts,
		newOperationID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
		telemetry: sharedTelemetry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.async == nil && engine != nil {
		p.async = AsyncFrom(engine)
	}
	return p
}

// Prepare is like the package-level Prepare but honours WithMaxMarkerAttempts.
func (p *Prover) Prepare(ev nostr.Event, d Difficulty) (*Work, error) {
	return prepare(ev, d, p.maxMarkerAttempts)
}

// ComputeProofOfWork prepares ev, blocks on the engine and returns the
// finished event with its nonce tag and id set.
//
// Engine errors are returned unchanged. On any error the returned event is
// the zero value and ev is untouched.
func (p *Prover) ComputeProofOfWork(ctx context.Context, ev nostr.Event, d Difficulty) (nostr.Event, error) {
	start := time.Now()
	ctx, span := p.telemetry.start(ctx, modeSync, d)
	log := p.operationLogger(modeSync, d)

	finished, err := p.computeSync(ctx, span, log, ev, d)
	if err != nil {
		log.WithError(err).Debug("Proof of work failed")
	}
	p.telemetry.end(ctx, span, modeSync, start, err)
	return finished, err
}

func (p *Prover) computeSync(ctx context.Context, span trace.Span, log *logrus.Entry, ev nostr.Event, d Difficulty) (nostr.Event, error) {
	if p.engine == nil {
		return nostr.Event{}, newInvalidParameter(nil, "no blocking search engine configured")
	}

	w, err := p.Prepare(ev, d)
	if err != nil {
		return nostr.Event{}, err
	}
	span.SetAttributes(attribute.String("pow.marker", w.Marker))
	log = log.WithField("marker", w.Marker)
	log.Debug("Dispatching nonce search")

	nonce, err := p.engine.Search(ctx, w.Prefix, w.Suffix, uint(w.Difficulty))
	if err != nil {
		return nostr.Event{}, err
	}
	return p.finish(log, w, nonce)
}

// ComputeProofOfWorkAsync is the non-blocking form of ComputeProofOfWork.
//
// It never reports failure directly: invalid arguments, dispatch failures and
// engine errors all resolve the returned Future. If the engine calls back more
// than once, only the first completion counts.
func (p *Prover) ComputeProofOfWorkAsync(ctx context.Context, ev nostr.Event, d Difficulty) *Future {
	f := newFuture()
	start := time.Now()
	ctx, span := p.telemetry.start(ctx, modeAsync, d)
	log := p.operationLogger(modeAsync, d)

	settle := func(finished nostr.Event, err error) {
		if !f.resolve(finished, err) {
			return
		}
		if err != nil {
			log.WithError(err).Debug("Proof of work failed")
		}
		p.telemetry.end(ctx, span, modeAsync, start, err)
	}

	if p.async == nil {
		settle(nostr.Event{}, newInvalidParameter(nil, "no asynchronous search engine configured"))
		return f
	}

	w, err := p.Prepare(ev, d)
	if err != nil {
		settle(nostr.Event{}, err)
		return f
	}
	span.SetAttributes(attribute.String("pow.marker", w.Marker))
	log = log.WithField("marker", w.Marker)

	var completed atomic.Bool
	done := func(nonce string, err error) {
		if !completed.CompareAndSwap(false, true) {
			log.WithField("nonce", nonce).Warn("Search engine completed more than once; ignoring")
			return
		}
		if err != nil {
			settle(nostr.Event{}, err)
			return
		}
		settle(p.finish(log, w, nonce))
	}

	log.Debug("Dispatching asynchronous nonce search")
	if err := p.async.SearchAsync(ctx, w.Prefix, w.Suffix, uint(w.Difficulty), done); err != nil {
		if completed.CompareAndSwap(false, true) {
			settle(nostr.Event{}, err)
		} else {
			log.WithError(err).Warn("Search engine failed to dispatch after completing; ignoring")
		}
	}
	return f
}

func (p *Prover) finish(log *logrus.Entry, w *Work, nonce string) (nostr.Event, error) {
	if event.NeedsEscape(nonce) {
		log.WithField("nonce", nonce).Warn("Nonce needs JSON escaping; id will not match the searched bytes")
	}

	finished, err := w.Finish(nonce)
	if err != nil {
		return nostr.Event{}, err
	}

	log.WithFields(logrus.Fields{
		"nonce": nonce, "id": finished.ID,
	}).Debug("Proof of work complete")
	return finished, nil
}

func (p *Prover) operationLogger(mode string, d Difficulty) *logrus.Entry {
	return p.logger.WithFields(logrus.Fields{
		"op": p.newOperationID(), "mode": mode, "difficulty": int(d),
	})
}

// ComputeProofOfWork runs the blocking protocol with a default Prover.
func ComputeProofOfWork(ctx context.Context, engine Engine, ev nostr.Event, d Difficulty) (nostr.Event, error) {
	return New(engine).ComputeProofOfWork(ctx, ev, d)
}

// ComputeProofOfWorkAsync runs the non-blocking protocol with a default Prover.
func ComputeProofOfWorkAsync(ctx context.Context, engine AsyncEngine, ev nostr.Event, d Difficulty) *Future {
	return New(nil, WithAsyncEngine(engine)).ComputeProofOfWorkAsync(ctx, ev, d)
}
