package pix

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when the payee key is blank after trimming.
	ErrMissingKey = errors.New("pix: key is required")
	// ErrInvalidAmount matches every *InvalidAmountError.
	ErrInvalidAmount = errors.New("pix: invalid amount")
	// ErrFieldTooLong matches every *FieldTooLongError.
	ErrFieldTooLong = errors.New("pix: field too long")
	// ErrMalformed is returned when a payload does not follow the TLV grammar.
	ErrMalformed = errors.New("pix: malformed payload")
	// ErrChecksumMismatch is returned when the CRC trailer does not match the body.
	ErrChecksumMismatch = errors.New("pix: checksum mismatch")
)

// InvalidAmountError reports an amount that is not finite or not greater than zero
// once rounded to cents.
type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("pix: amount must be greater than zero, got %v", e.Amount)
}

func (e *InvalidAmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// FieldTooLongError reports a field whose value does not fit the two-digit length.
type FieldTooLongError struct {
	ID     string
	Length int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("pix: field %s exceeds max length (%d > %d)", e.ID, e.Length, maxFieldLength)
}

func (e *FieldTooLongError) Is(target error) bool {
	return target == ErrFieldTooLong
}
