package services

import "errors"

// Domain errors. Callers match with errors.Is; the wrapped message carries
// the detail a client needs to correct its input.
var (
	ErrAuthenticationFailed    = errors.New("registration number or password incorrect")
	ErrAuthorizationDenied     = errors.New("insufficient permissions")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidType             = errors.New("invalid transfer request type")
	ErrInvalidPreference       = errors.New("invalid courthouse preference")
	ErrInvalidAttachment       = errors.New("invalid attachment")
	ErrDailyLimitExceeded      = errors.New("daily transfer request limit reached")
	ErrNotFound                = errors.New("transfer request not found")
	ErrNotFoundOrForbidden     = errors.New("transfer request either does not exist or you are not authorized to access it")
	ErrNotPending              = errors.New("transfer request status is not pending")
	ErrSelfReviewForbidden     = errors.New("you cannot decide your own transfer request")
	ErrInvalidPreferenceChoice = errors.New("approved preference does not belong to this transfer request")
	ErrConflict                = errors.New("already exists")
)
