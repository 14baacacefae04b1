package utils

import "time"

// OptionalTime returns t in UTC, or nil when t is unset
func OptionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// TimeOrZero dereferences t, treating nil as the zero time
func TimeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
