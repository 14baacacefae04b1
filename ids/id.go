// Package ids holds the canonical identifier used for every backend record.
//
// The backend is inconsistent about identifier types: the same user may arrive as 7 in
// one payload and "7" in another. IDs are normalized once, when a payload is decoded,
// so the rest of the code compares plain values.
package ids

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a normalized backend identifier. The zero value means "no identifier".
type ID string

// Parse normalizes a loosely typed identifier. Integers and numeric strings map to the
// same ID; nil maps to the zero ID.
func Parse(v any) (ID, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case ID:
		return ID(strings.TrimSpace(string(t))), nil
	case string:
		return ID(strings.TrimSpace(t)), nil
	case json.Number:
		return fromNumber(t.String())
	case int:
		return ID(strconv.FormatInt(int64(t), 10)), nil
	case int32:
		return ID(strconv.FormatInt(int64(t), 10)), nil
	case int64:
		return ID(strconv.FormatInt(t, 10)), nil
	case uint:
		return ID(strconv.FormatUint(uint64(t), 10)), nil
	case uint32:
		return ID(strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		return ID(strconv.FormatUint(t, 10)), nil
	case float64:
		if t != float64(int64(t)) {
			return "", fmt.Errorf("identifier %v is not an integer", t)
		}
		return ID(strconv.FormatInt(int64(t), 10)), nil
	}
	return "", fmt.Errorf("unsupported identifier type %T", v)
}

// MustParse is Parse for literals known to be valid.
func MustParse(v any) ID {
	id, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return id
}

func fromNumber(s string) (ID, error) {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(s), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return "", fmt.Errorf("identifier %s is not an integer", s)
	}
	return ID(strconv.FormatInt(int64(f), 10)), nil
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// Int64 returns the identifier as an integer when it is numeric.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	parsed, err := fromNumber(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON writes numeric identifiers as numbers so the backend sees the type it issued.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, ok := id.Int64(); ok && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Equal reports whether a and b name the same record. Two absent IDs are not equal.
func Equal(a, b ID) bool {
	return a != "" && a == b
}

// Contains reports whether id is a member of list.
func Contains(list []ID, id ID) bool {
	for _, v := range list {
		if Equal(v, id) {
			return true
		}
	}
	return false
}

// Add returns list with id appended unless it is already present or absent.
func Add(list []ID, id ID) []ID {
	if id.IsZero() || Contains(list, id) {
		return list
	}
	return append(list, id)
}
