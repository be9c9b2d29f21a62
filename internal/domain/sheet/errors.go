package sheet

import "fmt"

// Record-level validation error codes
const (
	ErrCodeRequiredField  = "ERR_REQUIRED_FIELD"
	ErrCodeInvalidType    = "ERR_INVALID_TYPE"
	ErrCodeInvalidFormat  = "ERR_INVALID_FORMAT"
	ErrCodeNotANumber     = "ERR_NOT_A_NUMBER"
	ErrCodeNotWholeNumber = "ERR_NOT_WHOLE_NUMBER"
)

// RecordError represents a validation error on a specific record field
type RecordError struct {
	RecordID string `json:"record_id,omitempty"`
	Index    int    `json:"index"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Value    string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record %d, field '%s': %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Message)
}

// NewRecordError creates a new RecordError
func NewRecordError(index int, recordID, field, code, message string) RecordError {
	return RecordError{
		RecordID: recordID,
		Index:    index,
		Field:    field,
		Code:     code,
		Message:  message,
	}
}

// WithValue attaches the offending value
func (e RecordError) WithValue(value string) RecordError {
	e.Value = value
	return e
}

// ErrorCollection manages a capped collection of record validation errors
type ErrorCollection struct {
	errors     []RecordError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RecordError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RecordError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the collected errors (capped at the configured limit)
func (ec *ErrorCollection) Errors() []RecordError {
	return ec.errors
}

// HasErrors reports whether any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// TotalCount returns the total number of errors seen, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// IsTruncated reports whether errors were dropped due to the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}

// Clear resets the collection
func (ec *ErrorCollection) Clear() {
	ec.errors = ec.errors[:0]
	ec.totalCount = 0
}
