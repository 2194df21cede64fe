// Package apperrors defines the error kinds the core operations surface.
// Handlers translate them to HTTP statuses with errors.Is; everything else
// wraps them with context via fmt.Errorf("...: %w", ...).
package apperrors

import "errors"

var (
	// ErrNotFound: a referenced entity is absent (404-equivalent).
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied: authorization failed. Terminal, never retried
	// (403-equivalent).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation: malformed payload (400-equivalent). Wrap with the field
	// detail: fmt.Errorf("%w: status must be one of ...", ErrValidation).
	ErrValidation = errors.New("validation error")

	// ErrExternalService: the summarizer or delivery channel is unreachable
	// or erroring. The current tick abandons the group; the next poll
	// retries (502-equivalent).
	ErrExternalService = errors.New("external service error")
)
