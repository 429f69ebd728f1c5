package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// NoProcessableDataMessage is the user-facing detail returned when every
// strategy of the applicable pipeline came back empty.
const NoProcessableDataMessage = "Keine verarbeitbaren Tabellen gefunden"

// ErrNoProcessableData is matched with errors.Is against any ExtractionError
// of type ErrorTypeNoProcessableData.
var ErrNoProcessableData = stderrors.New(NoProcessableDataMessage)

// ExtractionError describes a failure while turning a PDF into cable records
type ExtractionError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	TableIndex  int       `json:"table_index,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// ErrorType categorises extraction failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMalformedTable
	ErrorTypeBackendFailure
	ErrorTypeNoProcessableData
	ErrorTypeInvalidInput
)

// Error implements the error interface
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.PageNumber > 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, e.PageNumber)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the backend error, if any
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNoProcessableData) match the typed error.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrNoProcessableData && e.Type == ErrorTypeNoProcessableData
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeMalformedTable:
		return "MALFORMED_TABLE"
	case ErrorTypeBackendFailure:
		return "BACKEND_FAILURE"
	case ErrorTypeNoProcessableData:
		return "NO_PROCESSABLE_DATA"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether extraction continues after an error of this type.
// Malformed tables and per-page backend failures are absorbed by the engine.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeMalformedTable, ErrorTypeBackendFailure:
		return true
	default:
		return false
	}
}

// NewExtractionError creates a new ExtractionError with the recoverability of its type
func NewExtractionError(errorType ErrorType, message string) *ExtractionError {
	return &ExtractionError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// NewMalformedTableError reports an irregular grid found during record assembly
func NewMalformedTableError(strategy string, page, table int, context string) *ExtractionError {
	err := NewExtractionError(ErrorTypeMalformedTable, "irregular table rows")
	err.Strategy = strategy
	err.PageNumber = page
	err.TableIndex = table
	err.Context = context
	return err
}

// NewBackendFailureError wraps an error raised by the PDF, raster or OCR backend
func NewBackendFailureError(op string, page int, cause error) *ExtractionError {
	err := NewExtractionError(ErrorTypeBackendFailure, op+" failed")
	err.PageNumber = page
	err.Err = cause
	return err
}

// NewNoProcessableDataError is the single failure surfaced to callers
func NewNoProcessableDataError(filePath string) *ExtractionError {
	err := NewExtractionError(ErrorTypeNoProcessableData, NoProcessableDataMessage)
	err.FilePath = filePath
	return err
}

// IsNoProcessableData reports whether err signals an exhausted strategy chain
func IsNoProcessableData(err error) bool {
	return stderrors.Is(err, ErrNoProcessableData)
}

// ErrorCollection gathers recoverable errors observed during one extraction
type ErrorCollection struct {
	Errors []*ExtractionError `json:"errors"`
}

// Add appends an error to the collection
func (ec *ErrorCollection) Add(err *ExtractionError) {
	ec.Errors = append(ec.Errors, err)
}

// HasErrors returns true if the collection contains any errors
func (ec *ErrorCollection) HasErrors() bool {
	return len(ec.Errors) > 0
}

// CountByType returns how many collected errors have the given type
func (ec *ErrorCollection) CountByType(errorType ErrorType) int {
	count := 0
	for _, err := range ec.Errors {
		if err.Type == errorType {
			count++
		}
	}
	return count
}

// Messages returns the collected errors as strings
func (ec *ErrorCollection) Messages() []string {
	out := make([]string, 0, len(ec.Errors))
	for _, err := range ec.Errors {
		out = append(out, err.Error())
	}
	return out
}
