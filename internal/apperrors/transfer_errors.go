package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrParticipant is the sentinel behind every ParticipantError.
	ErrParticipant = errors.New("invalid transfer participant")
	// ErrInsufficientFunds is the sentinel behind every InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConversion is the sentinel behind every ConversionError.
	ErrConversion = errors.New("currency conversion failed")
	// ErrPersistenceConflict marks a retryable storage conflict (reference collision, concurrent change).
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrAuthorizationPrecondition is returned when the settlement engine is called without
	// a verified authorization for the sender. It is a programming error in the caller.
	ErrAuthorizationPrecondition = errors.New("transfer invoked without prior authorization")
)

// ParticipantReason enumerates why a participant was rejected.
type ParticipantReason string

const (
	ParticipantNotFound      ParticipantReason = "NOT_FOUND"
	ParticipantDeleted       ParticipantReason = "DELETED"
	ParticipantSelfTransfer  ParticipantReason = "SELF_TRANSFER"
	ParticipantMissingHandle ParticipantReason = "MISSING_HANDLE"
)

const (
	RoleSender   = "sender"
	RoleReceiver = "receiver"
)

// ParticipantError reports a sender or receiver that cannot take part in a transfer.
type ParticipantError struct {
	Role   string
	Reason ParticipantReason
	Ref    string
}

func (e *ParticipantError) Error() string {
	return fmt.Sprintf("%s: %s %q rejected (%s)", ErrParticipant, e.Role, e.Ref, e.Reason)
}

func (e *ParticipantError) Unwrap() error { return ErrParticipant }

// NewParticipantError creates a ParticipantError.
func NewParticipantError(role string, reason ParticipantReason, ref string) *ParticipantError {
	return &ParticipantError{Role: role, Reason: reason, Ref: ref}
}

// InsufficientFundsError carries the shortfall in the unit that was actually checked
// (the sender's balance currency, or the asset symbol).
type InsufficientFundsError struct {
	Unit      string
	Required  decimal.Decimal
	Available decimal.Decimal
	Asset     bool
}

// Shortfall is Required - Available.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: required %s %s, available %s, short by %s",
		ErrInsufficientFunds, e.Required.String(), e.Unit, e.Available.String(), e.Shortfall().String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// NewInsufficientFundsError creates an InsufficientFundsError for a fiat balance.
func NewInsufficientFundsError(currency string, required, available decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{Unit: currency, Required: required, Available: available}
}

// NewInsufficientAssetError creates an InsufficientFundsError for an asset holding.
func NewInsufficientAssetError(symbol string, required, available decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{Unit: symbol, Required: required, Available: available, Asset: true}
}

// ConversionError reports malformed or missing rate data.
type ConversionError struct {
	From   string
	To     string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrConversion, e.Reason)
	if e.From != "" || e.To != "" {
		msg = fmt.Sprintf("%s (%s -> %s)", msg, e.From, e.To)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}
	return []error{ErrConversion, e.Err}
}

// NewConversionError creates a ConversionError.
func NewConversionError(from, to, reason string, err error) *ConversionError {
	return &ConversionError{From: from, To: to, Reason: reason, Err: err}
}

// PersistenceConflictError is a retryable storage failure.
type PersistenceConflictError struct {
	Op  string
	Err error
}

func (e *PersistenceConflictError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s during %s", ErrPersistenceConflict, e.Op)
	}
	return fmt.Sprintf("%s during %s: %v", ErrPersistenceConflict, e.Op, e.Err)
}

func (e *PersistenceConflictError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistenceConflict}
	}
	return []error{ErrPersistenceConflict, e.Err}
}

// NewPersistenceConflict creates a PersistenceConflictError.
func NewPersistenceConflict(op string, err error) *PersistenceConflictError {
	return &PersistenceConflictError{Op: op, Err: err}
}

// IsRetryable reports whether the whole settlement may be re-run.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceConflict)
}

// UserMessage renders a human-readable reason for err. Internal details never leak.
func UserMessage(err error) string {
	var (
		pe *ParticipantError
		ie *InsufficientFundsError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		switch pe.Reason {
		case ParticipantSelfTransfer:
			return "You cannot transfer to yourself"
		case ParticipantMissingHandle:
			return "Receiver has not set up an account number"
		case ParticipantDeleted, ParticipantNotFound:
			if pe.Role == RoleSender {
				return "Sender account not found"
			}
			return "Receiver not found"
		}
		return "Invalid transfer participant"
	case errors.As(err, &ie):
		return fmt.Sprintf("Insufficient balance. You need %s %s more", ie.Shortfall().StringFixed(shortfallPlaces(ie)), ie.Unit)
	case errors.Is(err, ErrConversion):
		return "Exchange rates are temporarily unavailable. Please try again later"
	case errors.Is(err, ErrPersistenceConflict):
		return "The transfer could not be completed. Please try again"
	case errors.Is(err, ErrUnauthorized):
		return "Invalid transfer PIN"
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	}
	return "Transfer failed"
}

func shortfallPlaces(e *InsufficientFundsError) int32 {
	if e.Asset {
		return 8
	}
	return 2
}
