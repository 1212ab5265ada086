package token

import "time"

// EntryType discriminates ledger entries.
type EntryType string

const (
	// EntryCreditSale records tokens minted to a seller after a completed sale.
	EntryCreditSale EntryType = "CREDIT_SALE"
	// EntryDebitRedemption records tokens burned when redeemed for fiat.
	EntryDebitRedemption EntryType = "DEBIT_REDEMPTION"
)

// Wallet is the per-user balance record. TokenBalance must always equal the
// sum of the user's ledger entry amounts.
type Wallet struct {
	UserID       string
	TokenBalance int64
	FiatBalance  float64
	CreatedAt    time.Time
}

// Entry is one immutable row of the append-only token ledger. Amount is
// positive for credits and negative for debits; SourceFiat is the signed fiat
// equivalent of the movement.
type Entry struct {
	UserID     string
	Type       EntryType
	Amount     int64
	SourceFiat float64
	CreatedAt  time.Time
}
