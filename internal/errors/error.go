package errors

import (
	"errors"
)

var (
	ErrSecretUnconfigured  = errors.New("webhook secret is not configured")
	ErrMissingSignature    = errors.New("missing signature header")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrSessionUnconfigured = errors.New("admin session secret is not configured")
	ErrTokenInvalid        = errors.New("invalid session token")
	ErrTokenExpired        = errors.New("session token expired")
	ErrPasswordInvalid     = errors.New("invalid password")
	ErrCartNotFound        = errors.New("cart not found")
	ErrNoCartID            = errors.New("no cart id stored")
	ErrMissingCartID       = errors.New("cart id is missing")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrEmptyVariantID      = errors.New("variant id must not be empty")
	ErrProductNotFound     = errors.New("product not found")
	ErrAudienceUnset       = errors.New("newsletter audience is not configured")
	ErrShowNotFound        = errors.New("show not found")
)
