// Package pow prepares Nostr events for proof-of-work mining and finishes
// them once a nonce is found (NIP-13).
//
// A Prover validates the difficulty, strips stale nonce tags, appends a
// ["nonce", "<<i>>", "<difficulty>"] tag whose value is a placeholder marker
// that occurs nowhere else in the event, and splits the canonical
// serialization around that marker. An external Engine searches for a nonce
// such that SHA-256(prefix + nonce + suffix) has enough leading zero bits;
// the Prover then embeds the nonce and computes the event id.
//
// # Error Taxonomy
//
//   - INVALID_PARAMETER: malformed event or non-numeric difficulty
//   - DIFFICULTY_OUT_OF_RANGE: difficulty outside [0, MaxDifficulty]
//   - INTERNAL_ERROR: placeholder marker search exhausted
//   - engine errors: returned unchanged, see IsEngineError
//
// All errors are terminal for the operation. Retrying means calling the
// operation again, which chooses a fresh marker.
//
// # Concurrency
//
// The core does no work of its own off the caller's goroutine. The only
// suspension point is the engine call. The async path resolves a Future
// exactly once, whatever the engine does with its callback.
package pow
