package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds shared by the stores, the service layer and both HTTP surfaces.
var (
	ErrDuplicateNickname     = errors.New("nickname already taken")
	ErrInvalidCredentials    = errors.New("invalid nickname or password")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrValidation            = errors.New("validation failed")
	ErrContentRejected       = errors.New("content contains blocked words")
	ErrRequestAlreadyDecided = errors.New("admin request already decided")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// Storage wraps a driver error so callers can match it against ErrStorageUnavailable
// while the original cause stays reachable through errors.Is/As.
func Storage(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrStorageUnavailable, err)
}

// NotFound returns an ErrNotFound carrying the name of the missing thing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Forbidden returns an ErrForbidden with a short reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// ContentRejected lists the words that tripped the moderation filter.
type ContentRejected struct {
	Words []string
}

func (e *ContentRejected) Error() string {
	return fmt.Sprintf("%s: %v", ErrContentRejected.Error(), e.Words)
}

func (e *ContentRejected) Unwrap() error {
	return ErrContentRejected
}

// Is reports whether err matches target or any of others.
func Is(err, target error, others ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range others {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
