package token

import "context"

// Tx exposes the ledger primitives available inside one atomic transaction.
// Either every call in the transaction takes effect or none does.
type Tx interface {
	// WalletForUpdate reads the wallet row under a lock held until the
	// transaction ends, so a balance check and the subsequent debit act as one
	// unit. Returns ErrWalletNotFound when the user has no wallet.
	WalletForUpdate(ctx context.Context, userID string) (Wallet, error)

	// AdjustBalance applies a signed delta to the wallet balance and returns
	// the new balance. Returns ErrWalletNotFound for a missing wallet and
	// ErrNegativeBalance when the result would violate the non-negative
	// constraint.
	AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error)

	// AppendEntry inserts one immutable ledger row.
	AppendEntry(ctx context.Context, entry Entry) error
}

// Store is the durable backing for wallets and the token ledger.
type Store interface {
	// WithTx runs fn inside a single transaction. The transaction is rolled
	// back on any error or panic and committed only when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Wallet reads a wallet outside of any transaction.
	Wallet(ctx context.Context, userID string) (Wallet, error)

	// CreateWallet provisions a zero-balance wallet for the user.
	CreateWallet(ctx context.Context, userID string) error

	// Entries lists the ledger rows for a user, newest first.
	Entries(ctx context.Context, userID string) ([]Entry, error)
}
