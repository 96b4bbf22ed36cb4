package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PassParams carries the caller-supplied fields for a new pass. Everything
// except Email and Scope is optional.
type PassParams struct {
	FirstName string
	LastName  string
	Email     string
	Scope     string
	Context   json.RawMessage
	ExpiresAt time.Time // zero value means "default to now + defaultExpiry"
	MaxUses   *int      // nil means unlimited
}

// NewPass builds a pass with a fresh token, applying the defaulting rules:
// ExpiresAt falls back to now + defaultExpiry, and UsesRemaining is
// initialised to MaxUses when a use limit is set. MaxUses = 0 is accepted and
// yields an immediately exhausted pass.
func NewPass(params PassParams, now time.Time, defaultExpiry time.Duration) (*Pass, error) {
	if params.Email == "" {
		return nil, fmt.Errorf("pass email cannot be empty")
	}
	if params.Scope == "" {
		return nil, fmt.Errorf("pass scope cannot be empty")
	}
	if params.MaxUses != nil && *params.MaxUses < 0 {
		return nil, fmt.Errorf("max uses cannot be negative: %d", *params.MaxUses)
	}

	pass := &Pass{
		ID:            uuid.New().String(),
		Token:         uuid.New().String(),
		FirstName:     params.FirstName,
		LastName:      params.LastName,
		Email:         params.Email,
		Scope:         params.Scope,
		Context:       params.Context,
		CreatedAt:     now,
		LastUpdatedAt: now,
		ExpiresAt:     params.ExpiresAt,
		IsActive:      true,
	}

	if pass.ExpiresAt.IsZero() {
		pass.ExpiresAt = now.Add(defaultExpiry)
	}
	if params.MaxUses != nil {
		maxUses := *params.MaxUses
		remaining := maxUses
		pass.MaxUses = &maxUses
		pass.UsesRemaining = &remaining
	}

	return pass, nil
}
