package auth

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when no token has been stored yet
var ErrNoSession = errors.New("no session stored")

// Session is the single persisted login record. Only the token is kept.
type Session struct {
	Token string `json:"token"`
}

// SessionStore persists the current session
type SessionStore interface {
	// SaveSession replaces the stored session
	SaveSession(session *Session) error

	// LoadSession returns the stored session or ErrNoSession
	LoadSession() (*Session, error)
}

// Resolver turns the stored session into an organization identifier
type Resolver struct {
	store SessionStore
	claim string
}

// NewResolver creates a Resolver reading the given claim from the stored token
func NewResolver(store SessionStore, claim string) *Resolver {
	if claim == "" {
		claim = DefaultOrgClaim
	}
	return &Resolver{store: store, claim: claim}
}

// OrganizationID loads the session and extracts the organization identifier from its token
func (r *Resolver) OrganizationID() (string, error) {
	session, err := r.store.LoadSession()
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	if session.Token == "" {
		return "", ErrNoSession
	}
	return OrganizationID(session.Token, r.claim)
}
