// README: Error kinds raised by the geocoding and routing clients.
package maps

import (
	"errors"
	"fmt"
)

var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrRoutingFailed       = errors.New("routing failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// AddressNotFoundError carries the address the geocoder could not resolve.
type AddressNotFoundError struct {
	Address string
}

func (e *AddressNotFoundError) Error() string {
	return "Address not found: " + e.Address
}

func (e *AddressNotFoundError) Is(target error) bool {
	return target == ErrAddressNotFound
}

func upstreamError(service string, cause error) error {
	return fmt.Errorf("%s: %w: %w", service, ErrUpstreamUnavailable, cause)
}
