package miner

import (
	"context"
	"crypto/sha256"
	"encoding"
	"hash"
	"math/bits"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DigestBits is the largest difficulty a SHA-256 digest can satisfy.
const DigestBits = sha256.Size * 8

// PollInterval is the number of attempts between context checks.
const PollInterval = 1024

var (
	// ErrDifficultyTooHigh is returned for a difficulty above DigestBits.
	ErrDifficultyTooHigh = errors.New("difficulty exceeds digest size")

	// ErrExhausted is returned when every uint64 nonce has been tried.
	ErrExhausted = errors.New("nonce space exhausted")
)

// Miner searches for nonces on a fixed number of goroutines.
//
// Thread-safety: a Miner has no mutable state and may serve concurrent
// searches.
type Miner struct {
	workers int
	logger  *logrus.Entry
}

// Option configures a Miner.
type Option func(*Miner)

// WithWorkers sets the number of search goroutines. Values below 1 select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(m *Miner) {
		m.workers = n
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(m *Miner) {
		m.logger = logger
	}
}

// New creates a Miner.
func New(opts ...Option) *Miner {
	m := &Miner{logger: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers < 1 {
		m.workers = runtime.NumCPU()
	}
	return m
}

// Workers returns the number of search goroutines.
func (m *Miner) Workers() int {
	return m.workers
}

// Search returns the first decimal nonce found such that
// SHA-256(prefix + nonce + suffix) has at least difficulty leading zero bits.
//
// With several workers the nonce returned is not necessarily the smallest
// one that qualifies. A cancelled ctx yields an error wrapping ctx.Err().
func (m *Miner) Search(ctx context.Context, prefix, suffix []byte, difficulty uint) (string, error) {
	if difficulty > DigestBits {
		return "", errors.Wrapf(ErrDifficultyTooHigh, "difficulty %d", difficulty)
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "nonce search cancelled")
	}
	// Every digest qualifies.
	if difficulty == 0 {
		return "0", nil
	}

	mid := sha256.New()
	mid.Write(prefix)
	state, err := mid.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		return "", errors.Wrap(err, "snapshot prefix state")
	}

	log := m.logger.WithFields(logrus.Fields{
		"difficulty": difficulty, "workers": m.workers,
	})
	log.Debug("Starting nonce search")
	start := time.Now()

	searchCtx, stop := context.WithCancel(ctx)
	defer stop()

	var (
		once     sync.Once
		nonce    string
		attempts atomic.Uint64
	)
	found := func(n uint64) {
		once.Do(func() {
			nonce = strconv.FormatUint(n, 10)
			stop()
		})
	}

	g, gctx := errgroup.WithContext(searchCtx)
	for i := 0; i < m.workers; i++ {
		w := worker{
			state:      state,
			suffix:     suffix,
			difficulty: int(difficulty),
			start:      uint64(i),
			step:       uint64(m.workers),
		}
		g.Go(func() error {
			return w.run(gctx, &attempts, found)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	fields := logrus.Fields{
		"attempts": attempts.Load(),
		"duration": time.Since(start).String(),
	}
	if nonce != "" {
		log.WithFields(fields).WithField("nonce", nonce).Debug("Nonce found")
		return nonce, nil
	}
	if err := ctx.Err(); err != nil {
		log.WithFields(fields).Debug("Nonce search cancelled")
		return "", errors.Wrap(err, "nonce search cancelled")
	}
	return "", ErrExhausted
}

// SearchAsync runs Search on a new goroutine and reports the outcome to done.
// An unreachable difficulty is rejected before anything is started.
func (m *Miner) SearchAsync(ctx context.Context, prefix, suffix []byte, difficulty uint, done func(nonce string, err error)) error {
	if difficulty > DigestBits {
		return errors.Wrapf(ErrDifficultyTooHigh, "difficulty %d", difficulty)
	}
	if done == nil {
		return errors.New("nil completion callback")
	}
	go func() {
		done(m.Search(ctx, prefix, suffix, difficulty))
	}()
	return nil
}

// worker scans start, start+step, start+2*step, ... until ctx is done, a
// nonce is found or the uint64 range wraps.
type worker struct {
	state      []byte
	suffix     []byte
	difficulty int
	start      uint64
	step       uint64
}

func (w worker) run(ctx context.Context, attempts *atomic.Uint64, found func(uint64)) error {
	h := sha256.New()
	restore := h.(encoding.BinaryUnmarshaler)
	buf := make([]byte, 0, 20)
	sum := make([]byte, 0, sha256.Size)

	var tried uint64
	defer func() { attempts.Add(tried) }()

	for n := w.start; ; {
		if tried%PollInterval == 0 && ctx.Err() != nil {
			return nil
		}
		tried++

		ok, err := w.try(h, restore, n, buf, sum)
		if err != nil {
			return errors.Wrap(err, "restore prefix state")
		}
		if ok {
			found(n)
			return nil
		}

		next := n + w.step
		if next < n {
			return nil
		}
		n = next
	}
}

func (w worker) try(h hash.Hash, restore encoding.BinaryUnmarshaler, n uint64, buf, sum []byte) (bool, error) {
	if err := restore.UnmarshalBinary(w.state); err != nil {
		return false, err
	}
	h.Write(strconv.AppendUint(buf[:0], n, 10))
	h.Write(w.suffix)
	return LeadingZeroBits(h.Sum(sum[:0])) >= w.difficulty, nil
}

// LeadingZeroBits counts the zero bits at the start of digest.
func LeadingZeroBits(digest []byte) int {
	n := 0
	for _, b := range digest {
		if b != 0 {
			return n + bits.LeadingZeros8(b)
		}
		n += 8
	}
	return n
}

// Verify reports whether SHA-256(prefix + nonce + suffix) meets difficulty.
func Verify(prefix []byte, nonce string, suffix []byte, difficulty uint) bool {
	h := sha256.New()
	h.Write(prefix)
	h.Write([]byte(nonce))
	h.Write(suffix)
	return LeadingZeroBits(h.Sum(nil)) >= int(difficulty)
}
