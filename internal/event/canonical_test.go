package event

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeStringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain", "hi", `"hi"`},
		{"empty", "", `""`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"backspace short form", "a\bb", `"a\bb"`},
		{"form feed short form", "a\fb", `"a\fb"`},
		{"nul", "a\x00b", `"a\u0000b"`},
		{"unit separator lowercase hex", "\x1f", `"\u001f"`},
		{"escape char", "\x1b", `"\u001b"`},
		// NOT escaped: encoding/json would escape these
		{"html chars raw", "<a href='x'>&</a>", `"<a href='x'>&</a>"`},
		{"line separator raw", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator raw", "a\u2029b", "\"a\u2029b\""},
		{"delete raw", "a\x7fb", "\"a\x7fb\""},
		{"non-ascii raw", "\u00e9\U0001F600", "\"\u00e9\U0001F600\""},
		// NOT normalized: NFD stays NFD
		{"decomposed stays decomposed", "e\u0301", "\"e\u0301\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := nostr.Event{PubKey: "p", CreatedAt: 1, Kind: 1, Content: tt.content}
			expected := `[0,"p",1,1,[],` + tt.expected + `]`
			assert.Equal(t, expected, string(Serialize(ev)))
		})
	}
}

func TestSerializeInvalidUTF8Replaced(t *testing.T) {
	ev := nostr.Event{PubKey: "p", Content: "a\xffb"}
	assert.Equal(t, "[0,\"p\",0,0,[],\"a\uFFFDb\"]", string(Serialize(ev)))
}

func TestSerializeNilAndEmptyTagsMatch(t *testing.T) {
	withNil := nostr.Event{PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nil, Content: "hi"}
	withEmpty := nostr.Event{PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nostr.Tags{}, Content: "hi"}
	assert.Equal(t, Serialize(withEmpty), Serialize(withNil))
}

func TestSerializeNumbers(t *testing.T) {
	ev := nostr.Event{PubKey: "p", CreatedAt: -5, Kind: 30023}
	assert.Equal(t, `[0,"p",-5,30023,[],""]`, string(Serialize(ev)))
}

func TestSerializeDoesNotReorderTags(t *testing.T) {
	a := nostr.Event{Tags: nostr.Tags{{"p", "1"}, {"e", "2"}}}
	b := nostr.Event{Tags: nostr.Tags{{"e", "2"}, {"p", "1"}}}
	assert.NotEqual(t, Serialize(a), Serialize(b))
}

func TestSerializeDeterminism(t *testing.T) {
	ev := fixtureEvents()["tag_order"]
	first := Serialize(ev)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Serialize(ev), "iteration %d", i)
	}
}

func TestAppendSerializedKeepsPrefix(t *testing.T) {
	ev := fixtureEvents()["minimal"]
	out := appendSerialized([]byte("prefix:"), ev)
	assert.Equal(t, `prefix:[0,"abc",1000,1,[],"hi"]`, string(out))
}

// TestSerializeGolden pins the exact bytes for a set of fixture events.
// Golden files were produced with JSON.stringify semantics.
//
// To regenerate golden files, run:
//
//	go test ./internal/event -update
func TestSerializeGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for name, ev := range fixtureEvents() {
		t.Run(name, func(t *testing.T) {
			g.Assert(t, name, Serialize(ev))
		})
	}
}

// TestSerializeMatchesGoNostr cross-checks against go-nostr for events whose
// strings need no exotic escaping.
func TestSerializeMatchesGoNostr(t *testing.T) {
	for _, name := range []string{"minimal", "with_nonce"} {
		t.Run(name, func(t *testing.T) {
			ev := fixtureEvents()[name]
			assert.Equal(t, string(ev.Serialize()), string(Serialize(ev)))
			assert.Equal(t, ev.GetID(), ComputeID(ev))
		})
	}
}

func TestNeedsEscape(t *testing.T) {
	assert.False(t, NeedsEscape("12345"))
	assert.False(t, NeedsEscape("<<0>>"))
	assert.False(t, NeedsEscape("\u00e9"))
	assert.True(t, NeedsEscape(`"`))
	assert.True(t, NeedsEscape(`\`))
	assert.True(t, NeedsEscape("\n"))
	assert.True(t, NeedsEscape("\xff"))
}

func fixtureEvents() map[string]nostr.Event {
	return map[string]nostr.Event{
		"minimal": {
			PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nostr.Tags{}, Content: "hi",
		},
		"with_nonce": {
			PubKey: "abc", CreatedAt: 1000, Kind: 1, Tags: nostr.Tags{{"nonce", "0", "0"}}, Content: "hi",
		},
		"escapes": {
			PubKey:    "pk",
			CreatedAt: 1,
			Kind:      1,
			Tags:      nostr.Tags{{"t", `x"y`}},
			Content:   "a\"b\\c\nd\te\bf\fg\rh\x01i\x1fj<k>&l\u2028m\u2029n\x7fo\u00e9\U0001F600",
		},
		"tag_order": {
			PubKey:    "f7234bd4c1394dda46d09f35bd384dd30cc552ad5541990f98844fb06676e9ca",
			CreatedAt: 1673347337,
			Kind:      1,
			Tags:      nostr.Tags{{"p", "zz"}, {"e", "aa"}, {"nonce", "<<0>>", "21"}, {"a"}, {}},
			Content:   "<<0>> is literal",
		},
	}
}
