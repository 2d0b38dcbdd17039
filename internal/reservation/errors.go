package reservation

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
)

// Reservation outcomes. Every failure returned by this package matches
// exactly one of these with errors.Is.
var (
	// ErrInvalidRequest is returned before any transaction is opened.
	ErrInvalidRequest = errors.New("invalid reservation request")
	// ErrNotFound means the locator resolved to no event; nothing changed.
	ErrNotFound = errors.New("event not found")
	// ErrInsufficientInventory covers both "sold out" and "not enough
	// tickets"; nothing changed.
	ErrInsufficientInventory = errors.New("insufficient tickets remaining")
	// ErrStorageFailure wraps any I/O or transaction error. The
	// transaction was rolled back, so nothing changed.
	ErrStorageFailure = errors.New("storage failure")
)

// Outcome labels used in logs and metrics.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid_request"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient_inventory"
	OutcomeStorage      = "storage_failure"
)

// Outcome returns the stable label for a Reserve result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidRequest):
		return OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInsufficientInventory):
		return OutcomeInsufficient
	default:
		return OutcomeStorage
	}
}

// classify maps an error escaping the transaction onto the outcome
// taxonomy. Errors already classified inside the transaction pass through.
func classify(err error, loc Locator) error {
	switch {
	case errors.Is(err, ErrInsufficientInventory), errors.Is(err, ErrInvalidRequest):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}
