package event

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nbd-wtf/go-nostr"
)

// HashSerialized returns the lowercase hex SHA-256 of an already serialized event.
func HashSerialized(serialized []byte) string {
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

// ComputeID computes the content-addressed id of an event.
// The id is the SHA-256 of Serialize(ev); the current ev.ID is ignored.
func ComputeID(ev nostr.Event) string {
	return HashSerialized(Serialize(ev))
}

// CheckID reports whether ev.ID matches the id implied by its fields.
func CheckID(ev nostr.Event) bool {
	return ev.ID != "" && ev.ID == ComputeID(ev)
}
