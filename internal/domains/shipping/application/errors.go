package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// ErrInvalidInput signals the request violated a tracking invariant.
var ErrInvalidInput = errors.New("invalid shipment input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyRoute) ||
		errors.Is(err, domain.ErrMissingLocationName) ||
		errors.Is(err, domain.ErrInvalidPosition) ||
		errors.Is(err, domain.ErrInvalidOrderID) ||
		errors.Is(err, domain.ErrUnknownStepField) ||
		errors.Is(err, domain.ErrConflictingPatch) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
