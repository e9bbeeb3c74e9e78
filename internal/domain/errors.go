package domain

import "errors"

var (
	ErrNotFound     = errors.New("hbnb: not found")
	ErrUnauthorized = errors.New("hbnb: unauthorized")
	ErrForbidden    = errors.New("hbnb: forbidden")

	// ErrValidation means the backend rejected the payload (400).
	// The gateway validates first, so hitting this usually signals
	// drift between gateway rules and backend rules.
	ErrValidation = errors.New("hbnb: validation rejected")

	// ErrConfirmExpired means a delete confirmation token was missing,
	// expired, or bound to a different place. No delete call is issued.
	ErrConfirmExpired = errors.New("hbnb: delete confirmation expired")
)
