package session

import (
	"errors"
	"fmt"

	apperrors "solar-roi-workers/internal/common/errors"
)

var (
	ErrStaleResponse     = errors.New("stale lookup response")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrVersionConflict   = errors.New("session version conflict")
	ErrNotFound          = errors.New("session not found")
)

// Each session error wraps both its sentinel and the StandardError the job error
// handler reports, so errors.Is and errors.As both work.

func staleResponse(sessionID, requestID string) error {
	return fmt.Errorf("%w: %w", ErrStaleResponse, apperrors.NewStaleResponseError(sessionID, requestID))
}

func invalidTransition(s Snapshot, action string) error {
	return fmt.Errorf("%w: %w", ErrInvalidTransition, apperrors.NewInvalidTransitionError(s.id, string(s.state), action))
}

func notFound(sessionID string) error {
	return fmt.Errorf("%w: %w", ErrNotFound, apperrors.NewSessionNotFoundError(sessionID))
}

func versionConflict(sessionID string) error {
	return fmt.Errorf("%w: %w", ErrVersionConflict, apperrors.NewSessionConflictError(sessionID))
}

func storeFailure(err error) error {
	return apperrors.NewSessionStoreError(err)
}
