// Package apperr defines the structured error kinds surfaced by a coin creation run.
// Lower layers return plain errors; the workflow boundary classifies them into a Kind
// so callers never match on third-party message text.
package apperr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure for the user-facing notification surface.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindNoWalletConnected  Kind = "NO_WALLET_CONNECTED"
	KindWalletDisconnected Kind = "WALLET_DISCONNECTED"
	KindSigningRejected    Kind = "SIGNING_REJECTED"
	KindInsufficientFunds  Kind = "INSUFFICIENT_FUNDS"
	KindTransaction        Kind = "TRANSACTION_FAILED"
	KindMetadata           Kind = "METADATA_CREATION_FAILED"
	KindTimeout            Kind = "TIMEOUT"
	KindUnsupportedNetwork Kind = "UNSUPPORTED_NETWORK"
	KindInternal           Kind = "INTERNAL"
)

// Title returns the short notification title for the kind.
func (k Kind) Title() string {
	switch k {
	case KindValidation:
		return "Missing information"
	case KindNoWalletConnected:
		return "Wallet not connected"
	case KindWalletDisconnected:
		return "Wallet disconnected"
	case KindSigningRejected:
		return "Transaction rejected"
	case KindInsufficientFunds:
		return "Insufficient funds"
	case KindTransaction:
		return "Transaction failed"
	case KindMetadata:
		return "Failed to add metadata"
	case KindTimeout:
		return "Timed out"
	case KindUnsupportedNetwork:
		return "Unsupported network"
	default:
		return "Unexpected error"
	}
}

// Error is a classified failure. Message is the long description shown to the user.
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// New creates a classified error with a message and no cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: err.Error(), Err: errors.WithStack(err)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.New(KindTimeout, "", ""))
// works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Title is the short notification title.
func (e *Error) Title() string { return e.Kind.Title() }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// As returns err as *Error, classifying unknown errors as fallback.
func As(err error, fallback Kind, op string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae
	}
	return Wrap(fallback, op, err)
}
