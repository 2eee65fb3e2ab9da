package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrBillNotFound   = errors.New("bill_not_found")
	ErrVendorNotFound = errors.New("vendor_not_found")
	ErrInvalidPayment = errors.New("invalid_payment")
)

// DataIntegrityError reports a source record that violates a domain
// invariant. The engine surfaces these instead of repairing data it does not
// own; batch operations collect them alongside still-computable results.
type DataIntegrityError struct {
	BillID snowflake.ID
	Field  string
	Reason string
}

func (e DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation on bill %s: %s (%s)", e.BillID, e.Reason, e.Field)
}

// IsDataIntegrity reports whether err is (or wraps) a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var die DataIntegrityError
	return errors.As(err, &die)
}
