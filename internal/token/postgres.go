package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgCheckViolation = "23514"

// PostgresStore persists wallets and the token ledger in PostgreSQL. Row-level
// locks taken by UPDATE / SELECT FOR UPDATE serialize concurrent mutations of
// the same wallet for the lifetime of the enclosing transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed store around an injected pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

type pgTx struct {
	tx pgx.Tx
}

// WithTx runs fn inside one pgx transaction, rolling back on every exit path
// unless fn returned nil and the commit succeeded.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *pgTx) WalletForUpdate(ctx context.Context, userID string) (Wallet, error) {
	const query = `SELECT user_id, token_balance, fiat_balance, created_at
        FROM wallets WHERE user_id = $1 FOR UPDATE`
	return scanWallet(t.tx.QueryRow(ctx, query, userID))
}

func (t *pgTx) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	const query = `UPDATE wallets SET token_balance = token_balance + $1
        WHERE user_id = $2 RETURNING token_balance`
	var balance int64
	if err := t.tx.QueryRow(ctx, query, delta, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return 0, ErrNegativeBalance
		}
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

func (t *pgTx) AppendEntry(ctx context.Context, entry Entry) error {
	const query = `INSERT INTO token_ledger (user_id, type, amount, source_fiat)
        VALUES ($1, $2, $3, $4)`
	if _, err := t.tx.Exec(ctx, query, entry.UserID, string(entry.Type), entry.Amount, entry.SourceFiat); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// Wallet reads a wallet without locking.
func (s *PostgresStore) Wallet(ctx context.Context, userID string) (Wallet, error) {
	const query = `SELECT user_id, token_balance, fiat_balance, created_at
        FROM wallets WHERE user_id = $1`
	return scanWallet(s.db.QueryRow(ctx, query, userID))
}

// CreateWallet inserts a zero-balance wallet row.
func (s *PostgresStore) CreateWallet(ctx context.Context, userID string) error {
	const query = `INSERT INTO wallets (user_id, token_balance, fiat_balance)
        VALUES ($1, 0, 0)`
	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

// Entries returns the user's ledger rows, newest first.
func (s *PostgresStore) Entries(ctx context.Context, userID string) ([]Entry, error) {
	const query = `SELECT user_id, type, amount, source_fiat, created_at
        FROM token_ledger WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			entryType string
			createdAt time.Time
		)
		if err := rows.Scan(&e.UserID, &entryType, &e.Amount, &e.SourceFiat, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Type = EntryType(entryType)
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w         Wallet
		createdAt time.Time
	)
	if err := row.Scan(&w.UserID, &w.TokenBalance, &w.FiatBalance, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
