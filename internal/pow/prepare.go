package pow

import (
	"bytes"
	"strconv"

	"github.com/nbd-wtf/go-nostr"

	"github.com/roach88/nostrpow/internal/event"
)

// DefaultMaxMarkerAttempts bounds the placeholder marker search.
// Content would need every marker from <<0>> to <<4095>> to exhaust it.
const DefaultMaxMarkerAttempts = 4096

// Work is an event prepared for an external nonce search.
//
// For any nonce string that needs no JSON escaping,
// Prefix + nonce + Suffix is byte-identical to the canonical serialization
// of Event with that nonce in place of Marker.
type Work struct {
	// Event is the prepared copy: stale nonce tags removed, the placeholder
	// nonce tag appended last, ID empty.
	Event nostr.Event

	// Prefix is every serialized byte before the marker.
	Prefix []byte

	// Suffix is every serialized byte after the marker.
	Suffix []byte

	// Marker is the placeholder standing in for the nonce, e.g. "<<0>>".
	Marker string

	// Difficulty is the committed target, also stored in the nonce tag.
	Difficulty Difficulty
}

// Candidate returns Prefix + nonce + Suffix, the bytes an engine hashes.
func (w *Work) Candidate(nonce string) []byte {
	out := make([]byte, 0, len(w.Prefix)+len(nonce)+len(w.Suffix))
	out = append(out, w.Prefix...)
	out = append(out, nonce...)
	return append(out, w.Suffix...)
}

// Finish embeds nonce into the prepared event and computes its id.
// The Work itself is not modified, so Finish may be called more than once.
func (w *Work) Finish(nonce string) (nostr.Event, error) {
	return Finish(w.Event, nonce)
}

// Prepare validates the inputs and splits ev around a placeholder nonce.
// ev is not modified; Work.Event is an independent copy.
func Prepare(ev nostr.Event, d Difficulty) (*Work, error) {
	return prepare(ev, d, DefaultMaxMarkerAttempts)
}

func prepare(ev nostr.Event, d Difficulty, maxAttempts int) (*Work, error) {
	// Difficulty first: no serialization happens for an out-of-range target.
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := event.Validate(ev); err != nil {
		return nil, newInvalidParameter(err, "invalid event")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxMarkerAttempts
	}

	prepared := event.Clone(ev)
	prepared.ID = ""
	prepared.Tags = event.StripNonce(prepared.Tags)

	marker, err := chooseMarker(event.Serialize(prepared), maxAttempts)
	if err != nil {
		return nil, err
	}

	prepared.Tags = append(prepared.Tags, nostr.Tag{event.NonceTagName, marker, d.String()})
	serialized := event.Serialize(prepared)

	m := []byte(marker)
	if n := bytes.Count(serialized, m); n != 1 {
		return nil, newInternal("marker %s occurs %d times in prepared event", marker, n)
	}
	at := bytes.Index(serialized, m)

	return &Work{
		Event:      prepared,
		Prefix:     bytes.Clone(serialized[:at]),
		Suffix:     bytes.Clone(serialized[at+len(m):]),
		Marker:     marker,
		Difficulty: d,
	}, nil
}

// chooseMarker returns the first <<i>>, i = 0, 1, ..., that does not occur in
// serialized.
func chooseMarker(serialized []byte, maxAttempts int) (string, error) {
	buf := make([]byte, 0, 16)
	for i := 0; i < maxAttempts; i++ {
		buf = append(buf[:0], "<<"...)
		buf = strconv.AppendInt(buf, int64(i), 10)
		buf = append(buf, ">>"...)
		if !bytes.Contains(serialized, buf) {
			return string(buf), nil
		}
	}
	return "", newInternal("no free placeholder marker after %d attempts", maxAttempts)
}

// Finish embeds nonce into a prepared event and computes the final id.
//
// prepared must carry a nonce tag as its last tag, as produced by Prepare.
// The result is a new event; prepared is left as it was.
func Finish(prepared nostr.Event, nonce string) (nostr.Event, error) {
	last := event.LastTag(prepared.Tags)
	if !event.IsNonceTag(last) || len(last) < 2 {
		return nostr.Event{}, newInvalidParameter(nil, "event does not end with a nonce tag")
	}

	out := event.Clone(prepared)
	out.Tags[len(out.Tags)-1][1] = nonce
	out.ID = event.ComputeID(out)
	return out, nil
}
