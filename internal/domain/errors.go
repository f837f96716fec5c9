package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrLedgerWrite       = errors.New("private ledger write failed")
	ErrEncoding          = errors.New("record not representable")
	ErrEncryption        = errors.New("field encryption failed")
	ErrDecryption        = errors.New("field decryption failed")
	ErrAnchorUnavailable = errors.New("public anchor unavailable")
	ErrAnchorRejected    = errors.New("public anchor rejected")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates no value exists for a key
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// LedgerWriteError reports a rejected or failed private-ledger commit.
// It is fatal to a submission: nothing is hashed or anchored after it.
type LedgerWriteError struct {
	Key string
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("commit %q: %v", e.Key, e.Err)
}
func (e *LedgerWriteError) Unwrap() error        { return e.Err }
func (e *LedgerWriteError) Is(target error) bool { return target == ErrLedgerWrite }
func (e *LedgerWriteError) StatusCode() int      { return http.StatusBadGateway }

// EncodingError reports a field value that has no canonical byte representation
type EncodingError struct {
	Field   string
	Message string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}
func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
func (e *EncodingError) StatusCode() int      { return http.StatusUnprocessableEntity }

// EncryptionError reports a field cipher failure during encryption
type EncryptionError struct {
	Field string
	Err   error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encrypt %s: %v", e.Field, e.Err)
}
func (e *EncryptionError) Unwrap() error        { return e.Err }
func (e *EncryptionError) Is(target error) bool { return target == ErrEncryption }
func (e *EncryptionError) StatusCode() int      { return http.StatusInternalServerError }

// DecryptionError reports a ciphertext that the configured key cannot open
type DecryptionError struct {
	Field string
	Err   error
}

func (e *DecryptionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decrypt: %v", e.Err)
	}
	return fmt.Sprintf("decrypt %s: %v", e.Field, e.Err)
}
func (e *DecryptionError) Unwrap() error        { return e.Err }
func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }
func (e *DecryptionError) StatusCode() int      { return http.StatusUnprocessableEntity }

// AnchorUnavailableError means the public ledger could not be reached or no
// signer is connected. Non-fatal: submissions degrade instead of failing.
type AnchorUnavailableError struct {
	Reason string
	Err    error
}

func (e *AnchorUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("anchor unavailable: %s: %v", e.Reason, e.Err)
	}
	return "anchor unavailable: " + e.Reason
}
func (e *AnchorUnavailableError) Unwrap() error        { return e.Err }
func (e *AnchorUnavailableError) Is(target error) bool { return target == ErrAnchorUnavailable }
func (e *AnchorUnavailableError) StatusCode() int      { return http.StatusServiceUnavailable }

// AnchorRejectedError means the remote call completed but reported failure
type AnchorRejectedError struct {
	Reason string
	Code   int
}

func (e *AnchorRejectedError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("anchor rejected (code %d): %s", e.Code, e.Reason)
	}
	return "anchor rejected: " + e.Reason
}
func (e *AnchorRejectedError) Is(target error) bool { return target == ErrAnchorRejected }
func (e *AnchorRejectedError) StatusCode() int      { return http.StatusBadGateway }

// IsAnchorFailure reports whether err belongs to the non-fatal anchor family
func IsAnchorFailure(err error) bool {
	return errors.Is(err, ErrAnchorUnavailable) || errors.Is(err, ErrAnchorRejected)
}
