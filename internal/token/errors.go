package token

import "errors"

// Kind classifies a failure of a balance mutation so callers can map it to a
// response without inspecting storage-layer errors.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindUnauthorized        Kind = "unauthorized"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindTransactionFailed   Kind = "transaction_failed"
)

// Error is the structured failure value surfaced by the token service. Detail
// is safe to show to callers for every kind except KindTransactionFailed,
// where the underlying cause stays server-side.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Detail
}

// NewError builds a structured token error.
func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// KindOf extracts the kind from an error, defaulting to KindTransactionFailed
// for anything that is not a *token.Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindTransactionFailed
}

var (
	// ErrWalletNotFound occurs when a balance adjustment targets a user with no wallet row.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNegativeBalance indicates the storage constraint rejected an adjustment
	// that would have driven a token balance below zero.
	ErrNegativeBalance = errors.New("token balance would go negative")
)
