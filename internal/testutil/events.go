package testutil

import "github.com/nbd-wtf/go-nostr"

// SampleEvent returns {pubkey:"abc", created_at:1000, kind:1, tags:[], content:"hi"}.
func SampleEvent() nostr.Event {
	return nostr.Event{
		PubKey:    "abc",
		CreatedAt: 1000,
		Kind:      1,
		Tags:      nostr.Tags{},
		Content:   "hi",
	}
}

// SampleEventID is the id of SampleEvent with tags [["nonce","0","0"]], i.e.
// the hex SHA-256 of [0,"abc",1000,1,[["nonce","0","0"]],"hi"].
const SampleEventID = "c2158b20ebd11bc1e740119b3b8678bc207294357abc2a46dc16e6cfbffc1518"

// TaggedEvent returns a kind-1 reply with e/p tags and a stale nonce tag.
func TaggedEvent() nostr.Event {
	return nostr.Event{
		PubKey:    "f7234bd4c1394dda46d09f35bd384dd30cc552ad5541990f98844fb06676e9ca",
		CreatedAt: 1673347337,
		Kind:      1,
		Tags: nostr.Tags{
			{"e", "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36"},
			{"nonce", "776797", "20"},
			{"p", "f7234bd4c1394dda46d09f35bd384dd30cc552ad5541990f98844fb06676e9ca"},
		},
		Content: "It's just me mining my own business",
	}
}
