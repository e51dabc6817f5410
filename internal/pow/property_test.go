package pow

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nbd-wtf/go-nostr"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/testutil"
)

// pieceGen yields fragments that are likely to collide with markers or need
// escaping when joined into content and tag values.
func pieceGen() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf("<<0>>", "<<1>>", "<<2>>", "<<", ">>", "a", `"`, `\`, "\n", "nonce", "é"))
}

func propertyEvent(content, tagValue []string, withStale bool) nostr.Event {
	ev := testutil.SampleEvent()
	ev.Content = strings.Join(content, "")
	ev.Tags = nostr.Tags{{"t", strings.Join(tagValue, "")}}
	if withStale {
		ev.Tags = append(nostr.Tags{{"nonce", "<<0>>", "9"}}, ev.Tags...)
	}
	return ev
}

func TestPrepare_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("marker occurs exactly once and the split rejoins", prop.ForAll(
		func(content, tagValue []string, withStale bool, d int) bool {
			w, err := Prepare(propertyEvent(content, tagValue, withStale), Difficulty(d))
			if err != nil {
				return false
			}
			joined := w.Candidate(w.Marker)
			return bytes.Equal(joined, event.Serialize(w.Event)) &&
				bytes.Count(joined, []byte(w.Marker)) == 1
		},
		pieceGen(), pieceGen(), gen.Bool(), gen.IntRange(0, MaxDifficulty),
	))

	properties.Property("marker is the smallest free index", prop.ForAll(
		func(content, tagValue []string) bool {
			ev := propertyEvent(content, tagValue, false)
			w, err := Prepare(ev, 0)
			if err != nil {
				return false
			}
			stripped := event.Serialize(ev)
			if bytes.Contains(stripped, []byte(w.Marker)) {
				return false
			}
			i, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(w.Marker, "<<"), ">>"))
			if err != nil {
				return false
			}
			for j := 0; j < i; j++ {
				if !bytes.Contains(stripped, []byte("<<"+strconv.Itoa(j)+">>")) {
					return false
				}
			}
			return true
		},
		pieceGen(), pieceGen(),
	))

	properties.Property("finished id is the hash of prefix+nonce+suffix", prop.ForAll(
		func(content []string, n uint64, d int) bool {
			w, err := Prepare(propertyEvent(content, nil, true), Difficulty(d))
			if err != nil {
				return false
			}
			nonce := strconv.FormatUint(n, 10)
			finished, err := w.Finish(nonce)
			if err != nil {
				return false
			}
			return finished.ID == event.HashSerialized(w.Candidate(nonce)) && event.CheckID(finished)
		},
		pieceGen(), gen.UInt64(), gen.IntRange(0, MaxDifficulty),
	))

	properties.Property("out-of-range difficulty is always rejected", prop.ForAll(
		func(d int) bool {
			_, err := Prepare(testutil.SampleEvent(), Difficulty(d))
			return IsDifficultyOutOfRange(err)
		},
		gen.OneGenOf(gen.IntRange(-1000, -1), gen.IntRange(MaxDifficulty+1, 10000)),
	))

	properties.TestingRun(t)
}
