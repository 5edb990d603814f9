package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// Per-email failures. Only ErrParse is fatal to an email; the others
	// degrade the result.
	ErrParse      = errors.New("email could not be parsed")
	ErrFetch      = errors.New("image fetch failed")
	ErrRecognizer = errors.New("ocr recognition failed")
	ErrInference  = errors.New("inference failed")
)

// Error codes used with AppError.
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeInput      = "INPUT_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeFetch      = "FETCH_ERROR"
	CodeRecognizer = "OCR_ERROR"
	CodeInference  = "LLM_ERROR"
	CodeLedger     = "LEDGER_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func withSentinel(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// ParseError marks err as an unreadable-email failure.
func ParseError(message string, err error) error {
	return NewAppError(CodeParse, message, withSentinel(ErrParse, err))
}

// FetchError marks a failed image download.
func FetchError(message string, err error) error {
	return NewAppError(CodeFetch, message, withSentinel(ErrFetch, err))
}

// RecognizerError marks a failed OCR call.
func RecognizerError(message string, err error) error {
	return NewAppError(CodeRecognizer, message, withSentinel(ErrRecognizer, err))
}

// InferenceError marks a failed LLM call.
func InferenceError(message string, err error) error {
	return NewAppError(CodeInference, message, withSentinel(ErrInference, err))
}

// LedgerError marks a failed ledger read or write.
func LedgerError(message string, err error) error {
	return NewAppError(CodeLedger, message, withSentinel(ErrDatabase, err))
}
