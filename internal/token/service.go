package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/tokengrid/tokengrid/internal/metrics"
	"github.com/tokengrid/tokengrid/internal/notification"
)

// Params are the money parameters the service applies to every mutation.
type Params struct {
	// FeeRatio is the fraction of a sale's fiat amount retained by the
	// platform, in [0, 1).
	FeeRatio float64
	// TokenValue is the fiat value of one token, positive.
	TokenValue float64
}

// Service implements the balance mutation core: credit-on-sale and
// debit-on-redeem, both executed as single atomic transactions against the
// store.
type Service struct {
	store    Store
	params   Params
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds the token service around an injected store.
func NewService(store Store, params Params, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, params: params, notifier: notifier, logger: logger}
}

// SaleInput describes a completed sale reported by the escrow surface.
// BuyerID is retained for record-keeping only; it plays no part in the money
// movement.
type SaleInput struct {
	TransactionID string
	BuyerID       string
	SellerID      string
	FiatAmount    float64
}

// SaleResult is the outcome of a credited sale.
type SaleResult struct {
	TransactionID  string
	FeeCharged     string
	TokensCredited int64
}

// RedeemResult is the outcome of a token redemption.
type RedeemResult struct {
	FiatRedeemed string
}

// CompleteSale charges the platform fee, converts the net fiat to tokens
// (rounded to the nearest integer, halves away from zero) and atomically
// credits the seller wallet together with one CREDIT_SALE ledger row. A net
// amount smaller than one token's value credits zero tokens and still records
// the entry.
func (s *Service) CompleteSale(ctx context.Context, input SaleInput) (SaleResult, error) {
	if input.SellerID == "" {
		return SaleResult{}, NewError(KindInvalidInput, "seller id is required")
	}
	if input.FiatAmount <= 0 || math.IsInf(input.FiatAmount, 0) || math.IsNaN(input.FiatAmount) {
		return SaleResult{}, NewError(KindInvalidInput, "fiat amount must be a positive number")
	}

	fee := input.FiatAmount * s.params.FeeRatio
	netFiat := input.FiatAmount - fee
	tokens := int64(math.Round(netFiat / s.params.TokenValue))

	txID := input.TransactionID
	if txID == "" {
		txID = uuid.NewString()
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.AdjustBalance(ctx, input.SellerID, tokens); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, Entry{
			UserID:     input.SellerID,
			Type:       EntryCreditSale,
			Amount:     tokens,
			SourceFiat: netFiat,
		})
	})
	if err != nil {
		metrics.SalesTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return SaleResult{}, s.creditError(err, input.SellerID)
	}

	metrics.SalesTotal.WithLabelValues("ok").Inc()

	// Simulated escrow payout: the retained fee moves to the platform account.
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindEscrowFee,
			Destination: input.SellerID,
			Body:        fmt.Sprintf("fee of $%s retained on sale %s", formatFiat(fee), txID),
		})
	}

	return SaleResult{
		TransactionID:  txID,
		FeeCharged:     formatFiat(fee),
		TokensCredited: tokens,
	}, nil
}

// Redeem burns tokens from the caller's wallet in exchange for a simulated
// fiat payout. The balance check and the debit run inside one transaction so
// concurrent redemptions against the same wallet can never jointly overdraw
// it.
func (s *Service) Redeem(ctx context.Context, userID string, tokensToRedeem int64) (RedeemResult, error) {
	if userID == "" {
		return RedeemResult{}, NewError(KindUnauthorized, "caller identity is required")
	}
	if tokensToRedeem <= 0 {
		return RedeemResult{}, NewError(KindInvalidInput, "tokens to redeem must be a positive number")
	}

	fiatRedeemed := float64(tokensToRedeem) * s.params.TokenValue

	err := s.store.WithTx(ctx, func(tx Tx) error {
		w, err := tx.WalletForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrWalletNotFound) {
				return NewError(KindInsufficientBalance, "insufficient token balance")
			}
			return err
		}
		if w.TokenBalance < tokensToRedeem {
			return NewError(KindInsufficientBalance, "insufficient token balance")
		}
		if _, err := tx.AdjustBalance(ctx, userID, -tokensToRedeem); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, Entry{
			UserID:     userID,
			Type:       EntryDebitRedemption,
			Amount:     -tokensToRedeem,
			SourceFiat: -fiatRedeemed,
		})
	})
	if err != nil {
		metrics.RedemptionsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		var te *Error
		if errors.As(err, &te) {
			return RedeemResult{}, te
		}
		s.logger.Error("redemption rolled back",
			slog.String("user_id", userID),
			slog.Int64("tokens", tokensToRedeem),
			slog.Any("error", err),
		)
		return RedeemResult{}, NewError(KindTransactionFailed, "redemption failed")
	}

	metrics.RedemptionsTotal.WithLabelValues("ok").Inc()

	// Simulated payout to the user's bank.
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPayout,
			Destination: userID,
			Body:        fmt.Sprintf("payout of $%s initiated", formatFiat(fiatRedeemed)),
		})
	}

	return RedeemResult{FiatRedeemed: formatFiat(fiatRedeemed)}, nil
}

// Balance returns the wallet for the given user.
func (s *Service) Balance(ctx context.Context, userID string) (Wallet, error) {
	w, err := s.store.Wallet(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			return Wallet{}, NewError(KindNotFound, "wallet not found for this user")
		}
		s.logger.Error("wallet lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		return Wallet{}, NewError(KindTransactionFailed, "failed to retrieve wallet")
	}
	return w, nil
}

// Entries lists the caller's ledger history, newest first.
func (s *Service) Entries(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.store.Entries(ctx, userID)
	if err != nil {
		s.logger.Error("ledger lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		return nil, NewError(KindTransactionFailed, "failed to retrieve ledger entries")
	}
	return entries, nil
}

// CreateWallet provisions a zero-balance wallet; used by dev-mode registration
// where the identity repository cannot share a transaction with the store.
func (s *Service) CreateWallet(ctx context.Context, userID string) error {
	return s.store.CreateWallet(ctx, userID)
}

// creditError converts a storage failure into the structured error contract.
// Funds are considered to remain in escrow when the credit rolls back.
func (s *Service) creditError(err error, sellerID string) error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, ErrWalletNotFound) {
		return NewError(KindNotFound, "wallet not found for seller")
	}
	s.logger.Error("sale credit rolled back, funds retained in escrow",
		slog.String("seller_id", sellerID),
		slog.Any("error", err),
	)
	return NewError(KindTransactionFailed, "transaction failed, funds retained in escrow")
}

func outcomeLabel(err error) string {
	switch KindOf(err) {
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func formatFiat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
