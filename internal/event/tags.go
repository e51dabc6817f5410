package event

import "github.com/nbd-wtf/go-nostr"

// NonceTagName is the tag name carrying proof-of-work nonces (NIP-13).
const NonceTagName = "nonce"

// IsNonceTag reports whether tag is a nonce tag.
func IsNonceTag(tag nostr.Tag) bool {
	return len(tag) > 0 && tag[0] == NonceTagName
}

// StripNonce returns a copy of tags without any nonce tag.
// The relative order of the remaining tags is preserved.
func StripNonce(tags nostr.Tags) nostr.Tags {
	out := make(nostr.Tags, 0, len(tags))
	for _, tag := range tags {
		if IsNonceTag(tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// LastTag returns the final tag of the list, or nil if there are none.
func LastTag(tags nostr.Tags) nostr.Tag {
	if len(tags) == 0 {
		return nil
	}
	return tags[len(tags)-1]
}

// Clone returns a deep copy of ev. The tag list and every tag are copied so
// the result can be modified without affecting ev.
func Clone(ev nostr.Event) nostr.Event {
	out := ev
	if ev.Tags != nil {
		out.Tags = make(nostr.Tags, len(ev.Tags))
		for i, tag := range ev.Tags {
			if tag == nil {
				continue
			}
			out.Tags[i] = append(nostr.Tag(make([]string, 0, len(tag))), tag...)
		}
	}
	return out
}
