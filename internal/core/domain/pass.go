// Package domain contains the core business logic and entities for GuestGate.
package domain

import (
	"encoding/json"
	"time"
)

// Pass represents a temporary visitor pass: a scoped access grant identified
// by an opaque token, bounded by time and/or a use count.
type Pass struct {
	ID            string          `json:"id"`
	Token         string          `json:"token"` // opaque lookup key, immutable after creation
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	Scope         string          `json:"scope"` // maps the request to a protected view
	Context       json.RawMessage `json:"context,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	IsActive      bool            `json:"is_active"`
	MaxUses       *int            `json:"max_uses,omitempty"`       // nil means unlimited
	UsesRemaining *int            `json:"uses_remaining,omitempty"` // nil iff MaxUses is nil
}

// FullName returns the derived "first last" display name. Never stored.
func (p *Pass) FullName() string {
	return p.FirstName + " " + p.LastName
}

// SessionData returns the serializable unit a caller may bind to a session
// after a successful consume: the token string, nothing more.
func (p *Pass) SessionData() string {
	return p.Token
}

// HasExpired reports whether the expiry timestamp has been passed.
func (p *Pass) HasExpired(now time.Time) bool {
	if p.ExpiresAt.IsZero() {
		return false
	}
	return p.ExpiresAt.Before(now)
}

// OutOfUses reports whether a use-limited pass has no uses left.
// Unlimited passes (MaxUses == nil) are never out of uses.
func (p *Pass) OutOfUses() bool {
	if p.MaxUses == nil {
		return false
	}
	return p.UsesRemaining != nil && *p.UsesRemaining == 0
}

// IsValid reports whether the pass is active, unexpired and not exhausted.
func (p *Pass) IsValid(now time.Time) bool {
	return p.IsActive && !p.HasExpired(now) && !p.OutOfUses()
}

// Validate returns the first failing condition in fixed priority order
// (inactive, then expired, then exhausted) so the most specific message wins
// when several conditions hold at once. It has no side effects.
func (p *Pass) Validate(now time.Time) error {
	if !p.IsActive {
		return ErrPassInactive
	}
	if p.HasExpired(now) {
		return ErrPassExpired
	}
	if p.OutOfUses() {
		return ErrPassExhausted
	}
	return nil
}

// Serialize returns the flat JSON-compatible projection exposed to callers
// after a successful validation. Useful for template context and session data.
func (p *Pass) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"token":      p.Token,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"full_name":  p.FullName(),
		"email":      p.Email,
		"scope":      p.Scope,
		"context":    p.Context,
	}
}
