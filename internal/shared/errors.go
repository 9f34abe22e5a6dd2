package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. It deliberately does not
	// say whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates the account is administratively locked.
	ErrAccountInactive = errors.New("inactive account")
	// ErrForbidden indicates the user lacks a capability for the requested scope.
	ErrForbidden = errors.New("forbidden")
	// ErrResolutionUnavailable indicates a permission check could not be
	// completed because a backing store failed. Distinct from ErrForbidden:
	// operators need to tell "denied" apart from "could not determine".
	ErrResolutionUnavailable = errors.New("permission resolution unavailable")
	// ErrTooManyAttempts indicates the login throttle tripped.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
