package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyJSON
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	}
	return "empty"
}

// Body is a parsed response body. Callers must not assume JSON: the backend answers
// some endpoints with plain text and others with nothing at all.
type Body struct {
	raw  []byte
	kind BodyKind
}

// ParseBody classifies raw as JSON when it parses, text otherwise, empty when blank
func ParseBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return Body{kind: BodyEmpty}
	case json.Valid(trimmed):
		return Body{raw: trimmed, kind: BodyJSON}
	default:
		return Body{raw: raw, kind: BodyText}
	}
}

func (b Body) Kind() BodyKind {
	return b.kind
}

func (b Body) Raw() []byte {
	return b.raw
}

func (b Body) Text() string {
	return string(b.raw)
}

// Value returns the body the way a dynamic caller sees it: decoded JSON, a string for
// text, or an empty object for an empty body.
func (b Body) Value() (any, error) {
	switch b.kind {
	case BodyJSON:
		var v any
		if err := json.Unmarshal(b.raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case BodyText:
		return string(b.raw), nil
	}
	return map[string]any{}, nil
}

// Decode unmarshals a JSON body into out. An empty body leaves out untouched; a text
// body can only be decoded into a *string.
func (b Body) Decode(out any) error {
	if out == nil {
		return nil
	}
	switch b.kind {
	case BodyEmpty:
		return nil
	case BodyText:
		if s, ok := out.(*string); ok {
			*s = string(b.raw)
			return nil
		}
		return errors.Wrapf(ErrNotJSON, "[Body.Decode] %.80s", b.raw)
	}
	if err := json.Unmarshal(b.raw, out); err != nil {
		return errors.Wrap(err, "[Body.Decode] Unmarshal")
	}
	return nil
}

// Message extracts a human readable message from {"message": ...} / {"detail": ...} /
// {"error": ...} bodies, falling back to the raw text.
func (b Body) Message() string {
	if b.kind == BodyJSON {
		var m struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(b.raw, &m); err == nil {
			for _, s := range []string{m.Message, m.Detail, m.Error} {
				if s != "" {
					return s
				}
			}
		}
	}
	return string(b.raw)
}
