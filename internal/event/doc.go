// Package event provides the Nostr event model used by nostrpow together with
// its canonical serialization and content-addressed identifier.
//
// Events are represented as nostr.Event values from go-nostr. This package
// imports nothing internal; pow, miner and cli all build on it.
//
// Key constraints:
//   - Serialize is the ONLY encoding that may be hashed or split for mining
//   - Serialization is byte-compatible with ECMAScript JSON.stringify of the
//     tuple [0, pubkey, created_at, kind, tags, content]
//   - Strings are never Unicode-normalized; the bytes given are the bytes hashed
//   - Functions here never mutate their inputs
package event
