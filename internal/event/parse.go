package event

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/nbd-wtf/go-nostr"
)

//go:embed schema.cue
var schemaCUE string

// ShapeError reports an event that does not have the required shape.
type ShapeError struct {
	// Field names the offending field, if known.
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying decoder or schema error (optional).
	Err error
}

func (e *ShapeError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// schema holds the compiled #Event definition.
// cue.Context is not safe for concurrent use, so every use holds mu.
type schema struct {
	mu    sync.Mutex
	ctx   *cue.Context
	event cue.Value
	err   error
}

var (
	schemaOnce sync.Once
	compiled   schema
)

func loadSchema() *schema {
	schemaOnce.Do(func() {
		compiled.ctx = cuecontext.New()
		v := compiled.ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			compiled.err = fmt.Errorf("compile event schema: %w", err)
			return
		}
		compiled.event = v.LookupPath(cue.ParsePath("#Event"))
		if err := compiled.event.Err(); err != nil {
			compiled.err = fmt.Errorf("lookup #Event: %w", err)
		}
	})
	return &compiled
}

// wireEvent mirrors the on-the-wire JSON object.
type wireEvent struct {
	ID        string     `json:"id,omitempty"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig,omitempty"`
}

// Parse decodes a JSON event object.
// The input is checked against the #Event CUE schema before decoding, so a
// missing field, a float timestamp or a non-string tag element is reported
// as a *ShapeError rather than silently zeroed.
func Parse(data []byte) (nostr.Event, error) {
	if !utf8.Valid(data) {
		return nostr.Event{}, &ShapeError{Message: "event is not valid UTF-8"}
	}

	if err := checkSchema(data); err != nil {
		return nostr.Event{}, err
	}
	if err := checkRequired(data); err != nil {
		return nostr.Event{}, err
	}

	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nostr.Event{}, &ShapeError{Message: "decode event", Err: err}
	}

	ev := nostr.Event{
		ID:        w.ID,
		PubKey:    w.PubKey,
		CreatedAt: nostr.Timestamp(w.CreatedAt),
		Kind:      w.Kind,
		Tags:      make(nostr.Tags, len(w.Tags)),
		Content:   w.Content,
		Sig:       w.Sig,
	}
	for i, tag := range w.Tags {
		ev.Tags[i] = nostr.Tag(tag)
	}
	return ev, nil
}

// requiredFields must be present as keys; a zero value is not enough.
var requiredFields = []string{"pubkey", "created_at", "kind", "tags", "content"}

func checkRequired(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &ShapeError{Message: "decode event", Err: err}
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return &ShapeError{Field: name, Message: "required field is missing"}
		}
	}
	return nil
}

func checkSchema(data []byte) error {
	s := loadSchema()
	if s.err != nil {
		return s.err
	}

	expr, err := cuejson.Extract("event.json", data)
	if err != nil {
		return &ShapeError{Message: "malformed JSON", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return &ShapeError{Message: "malformed JSON", Err: err}
	}
	if err := s.event.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &ShapeError{Message: "event does not match schema", Err: err}
	}
	return nil
}

// Validate checks an in-memory event for values that cannot be serialized
// faithfully. Every string must be valid UTF-8.
func Validate(ev nostr.Event) error {
	if !utf8.ValidString(ev.PubKey) {
		return &ShapeError{Field: "pubkey", Message: "not valid UTF-8"}
	}
	if !utf8.ValidString(ev.Content) {
		return &ShapeError{Field: "content", Message: "not valid UTF-8"}
	}
	for i, tag := range ev.Tags {
		for j, s := range tag {
			if !utf8.ValidString(s) {
				return &ShapeError{Field: fmt.Sprintf("tags[%d][%d]", i, j), Message: "not valid UTF-8"}
			}
		}
	}
	return nil
}

// Marshal encodes ev as its wire JSON object.
// Unlike Serialize this is not canonical and must never be hashed.
func Marshal(ev nostr.Event) ([]byte, error) {
	w := wireEvent{
		ID:        ev.ID,
		PubKey:    ev.PubKey,
		CreatedAt: int64(ev.CreatedAt),
		Kind:      ev.Kind,
		Tags:      make([][]string, len(ev.Tags)),
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
	for i, tag := range ev.Tags {
		w.Tags[i] = []string(tag)
		if w.Tags[i] == nil {
			w.Tags[i] = []string{}
		}
	}
	return json.Marshal(w)
}
