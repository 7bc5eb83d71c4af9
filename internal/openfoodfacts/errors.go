package openfoodfacts

import (
	"errors"
	"fmt"
)

// Sentinel errors for Open Food Facts API operations.
var (
	ErrEmptyQuery   = errors.New("openfoodfacts: search query cannot be empty")
	ErrEmptyBarcode = errors.New("openfoodfacts: barcode cannot be empty")
	ErrNotFound     = errors.New("openfoodfacts: not found")
	ErrRateLimited  = errors.New("openfoodfacts: rate limited by server")
	ErrBadRequest   = errors.New("openfoodfacts: bad request")
	ErrServer       = errors.New("openfoodfacts: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "search", "getProduct"
	Barcode string // If applicable
	Err     error
}

func (e *Error) Error() string {
	if e.Barcode != "" {
		return fmt.Sprintf("openfoodfacts %s [%s]: %v", e.Op, e.Barcode, e.Err)
	}
	return fmt.Sprintf("openfoodfacts %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, barcode string, err error) error {
	return &Error{
		Op:      op,
		Barcode: barcode,
		Err:     err,
	}
}
