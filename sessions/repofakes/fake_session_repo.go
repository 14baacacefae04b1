package repofakes

import (
	"sync"

	"github.com/studyhub/portal/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session repo that counts calls for assertions
type FakeSessionRepo struct {
	lock    sync.Mutex
	session *sessions.Session

	LoadErr  error
	SaveErr  error
	ClearErr error

	saves  int
	clears int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo that already holds session
func NewFakeSessionRepoWith(session *sessions.Session) *FakeSessionRepo {
	return &FakeSessionRepo{session: session.Clone()}
}

func (r *FakeSessionRepo) Load() (*sessions.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.session == nil {
		return nil, sessions.ErrNotFound
	}
	return r.session.Clone(), nil
}

func (r *FakeSessionRepo) Save(session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.session = session.Clone()
	return nil
}

func (r *FakeSessionRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.clears++
	if r.ClearErr != nil {
		return r.ClearErr
	}
	r.session = nil
	return nil
}

// Stored returns the persisted session without going through Load
func (r *FakeSessionRepo) Stored() *sessions.Session {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.session.Clone()
}

func (r *FakeSessionRepo) Saves() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.saves
}

func (r *FakeSessionRepo) Clears() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.clears
}
