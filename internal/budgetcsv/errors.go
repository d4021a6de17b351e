package budgetcsv

import (
	"errors"
	"fmt"
	"strings"
)

// Import failures. Every one of them aborts the whole file.
var (
	ErrHeaderNotFound       = errors.New("header not found")
	ErrEmptyFile            = errors.New("empty file: no data rows after header")
	ErrInvalidPrice         = errors.New("invalid total price")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrNoValidRecords       = errors.New("no valid records found")
	ErrMalformedRow         = errors.New("unbalanced quotes in row")
)

// RowError reports the data row that stopped an import.
type RowError struct {
	Row   int    // 1-based line number in the uploaded file
	Field string // Column label, empty when the whole line is unreadable
	Value string // Offending cell, empty for missing values
	Err   error  // ErrInvalidPrice, ErrMissingRequiredField or ErrMalformedRow
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Row, e.Err)
	}
	if e.Value != "" {
		return fmt.Sprintf("line %d: %v %q in %q", e.Row, e.Err, e.Value, e.Field)
	}
	return fmt.Sprintf("line %d: %v %q", e.Row, e.Err, e.Field)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// headerNotFound names the anchor columns the header must carry.
func headerNotFound() error {
	labels := make([]string, len(anchorKeys))
	for i, k := range anchorKeys {
		labels[i] = labelFor(k)
	}
	return fmt.Errorf("%w: expected a row with columns %s", ErrHeaderNotFound, strings.Join(labels, ", "))
}

// IsImportError reports whether err came from parsing an import file.
// These errors are meant to be shown to the user as they are.
func IsImportError(err error) bool {
	return errors.Is(err, ErrHeaderNotFound) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrNoValidRecords) ||
		errors.Is(err, ErrMalformedRow)
}
