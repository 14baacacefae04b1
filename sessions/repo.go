package sessions

import portalerrors "github.com/studyhub/portal/internal/errors"

// ErrNotFound is returned by Load when nothing is persisted
var ErrNotFound = portalerrors.ErrSessionNotFound

// Repo persists the single local session
type Repo interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}
