package event

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
)

func TestHashSerialized(t *testing.T) {
	// sha256 of the empty string
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashSerialized(nil))
}

func TestComputeIDKnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		ev       nostr.Event
		expected string
	}{
		{
			name:     "no tags",
			ev:       nostr.Event{PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nostr.Tags{}, Content: "hi"},
			expected: "e6325d9df61859344e30b32f8fe6eef4b75a98b7918967fd13be1b80e52c6280",
		},
		{
			name:     "nonce tag",
			ev:       nostr.Event{PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nostr.Tags{{"nonce", "0", "0"}}, Content: "hi"},
			expected: "c2158b20ebd11bc1e740119b3b8678bc207294357abc2a46dc16e6cfbffc1518",
		},
		{
			name:     "escapes",
			ev:       fixtureEvents()["escapes"],
			expected: "ae3eaaaa59d2018e9e2a0256175ac43ffab0f2ca2cbb1bcb7d640986b7996ba6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeID(tt.ev))
		})
	}
}

func TestComputeIDIgnoresIDAndSig(t *testing.T) {
	ev := fixtureEvents()["minimal"]
	withID := ev
	withID.ID = "ffff"
	withID.Sig = "eeee"
	assert.Equal(t, ComputeID(ev), ComputeID(withID))
}

func TestCheckID(t *testing.T) {
	ev := fixtureEvents()["with_nonce"]
	assert.False(t, CheckID(ev), "empty id never checks")

	ev.ID = ComputeID(ev)
	assert.True(t, CheckID(ev))

	ev.Content = "changed"
	assert.False(t, CheckID(ev))
}
