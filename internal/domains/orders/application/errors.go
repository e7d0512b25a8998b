package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentStatus) ||
		errors.Is(err, domain.ErrNegativeTotal) ||
		errors.Is(err, domain.ErrMissingRecipient) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
