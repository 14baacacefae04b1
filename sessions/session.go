package sessions

import (
	"time"

	"github.com/studyhub/portal/users"
)

// Session is the client-held proof of authentication.
// Token is sent as a bearer credential, SessionCode in the session-code header; the
// backend accepts either depending on the endpoint.
type Session struct {
	Token       string      // Auth token returned by login (JWT or opaque)
	SessionCode string      // Session code, when the backend issues one
	Expiry      time.Time   // Local expiry; zero means "until the backend says otherwise"
	User        *users.User // Normalized user snapshot
}

// Expired reports whether the session's local expiry has passed
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.Expiry.IsZero() && !s.Expiry.After(now)
}

// Valid reports whether the session holds any credential at all
func (s *Session) Valid() bool {
	return s != nil && (s.Token != "" || s.SessionCode != "")
}

// Clone returns a copy that callers may modify freely
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.User != nil {
		u := *s.User
		u.Skills = append([]string(nil), s.User.Skills...)
		c.User = &u
	}
	return &c
}
