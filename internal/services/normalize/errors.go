package normalize

import "fmt"

// InvalidPriceError reports an entry/tp/sl value that could not be coerced to
// a finite number. The record cannot be displayed at all.
type InvalidPriceError struct {
	Field string
	Value any
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price for %q: %v", e.Field, e.Value)
}

// MissingRequiredFieldError reports that asset or direction could not be
// derived from the record, even after configured defaults.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %q missing and no default configured", e.Field)
}
