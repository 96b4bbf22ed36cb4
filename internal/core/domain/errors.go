package domain

import "errors"

// Typed failure kinds surfaced by pass validation. Each carries a distinct
// human-readable message so front ends can render guidance without
// string-matching; callers branch with errors.Is.
var (
	// ErrPassNotFound means no pass matches the supplied token.
	ErrPassNotFound = errors.New("visitor pass not found")
	// ErrPassInactive means the pass was explicitly deactivated.
	ErrPassInactive = errors.New("visitor pass is inactive")
	// ErrPassExpired means the current time is past the expiry timestamp.
	ErrPassExpired = errors.New("visitor pass has expired")
	// ErrPassExhausted means the remaining-use counter reached zero.
	ErrPassExhausted = errors.New("visitor pass has already been used the maximum number of times")
)
