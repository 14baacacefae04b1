package authflowrepo

import (
	"errors"
	"time"
)

var ErrStateNotFound = errors.New("state not found")

// AuthFlowState is what Begin remembers until the provider redirects back
type AuthFlowState struct {
	Provider     string
	CodeVerifier string
	Nonce        string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
}
