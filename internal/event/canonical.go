package event

import (
	"strconv"
	"unicode/utf8"

	"github.com/nbd-wtf/go-nostr"
)

const hexDigits = "0123456789abcdef"

// Serialize produces the canonical serialization of an event:
//
//	[0,"<pubkey>",<created_at>,<kind>,[["tag",...],...],"<content>"]
//
// CRITICAL: This is the ONLY serialization that may be used for the event id
// or for splitting the event around a nonce placeholder.
//
// Key differences from encoding/json:
//  1. No HTML escaping (< > & are emitted raw)
//  2. U+2028 and U+2029 are emitted raw
//  3. \b and \f use their short escapes, matching JSON.stringify
//  4. Field order is the fixed tuple order, tags keep their given order
func Serialize(ev nostr.Event) []byte {
	dst := make([]byte, 0, 32+len(ev.PubKey)+len(ev.Content)+len(ev.Tags)*80)
	return appendSerialized(dst, ev)
}

// appendSerialized appends the canonical serialization of ev to dst.
func appendSerialized(dst []byte, ev nostr.Event) []byte {
	dst = append(dst, "[0,"...)
	dst = appendString(dst, ev.PubKey)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(ev.CreatedAt), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(ev.Kind), 10)
	dst = append(dst, ',')
	dst = appendTags(dst, ev.Tags)
	dst = append(dst, ',')
	dst = appendString(dst, ev.Content)
	dst = append(dst, ']')
	return dst
}

// appendTags writes the tag list as a JSON array of string arrays.
// A nil tag list is written as [] so that it hashes like an empty one.
func appendTags(dst []byte, tags nostr.Tags) []byte {
	dst = append(dst, '[')
	for i, tag := range tags {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '[')
		for j, s := range tag {
			if j > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, s)
		}
		dst = append(dst, ']')
	}
	return append(dst, ']')
}

// appendString writes s as a quoted JSON string.
// Only the quote, the backslash and control characters (U+0000-U+001F) are
// escaped. Invalid UTF-8 is rejected earlier by Validate; here each invalid
// byte is replaced with U+FFFD the same way encoding/json does.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				dst = append(dst, s[start:i]...)
				dst = append(dst, "\uFFFD"...)
				i += size
				start = i
				continue
			}
			i += size
			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			i++
			continue
		}

		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		i++
		start = i
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// NeedsEscape reports whether s would be altered by string escaping, i.e.
// whether its serialized form differs from the raw bytes between the quotes.
func NeedsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == '"' || c == '\\' {
			return true
		}
	}
	return !utf8.ValidString(s)
}
