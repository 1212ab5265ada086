package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store used by
// unit tests and by dev mode when no DATABASE_URL is configured. Each WithTx
// call holds the store lock for its whole duration, which serializes
// transactions the way row locks do in the Postgres implementation.
type MemoryStore struct {
	mu      sync.Mutex
	wallets map[string]Wallet
	entries []Entry

	appendErr error
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wallets: make(map[string]Wallet)}
}

type memTx struct {
	store *MemoryStore
}

// WithTx runs fn against a snapshot-protected view: on error the wallet map
// and ledger are restored, so a failed transaction has zero observable effect.
func (s *MemoryStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]Wallet, len(s.wallets))
	for k, v := range s.wallets {
		snapshot[k] = v
	}
	entryCount := len(s.entries)

	if err := fn(&memTx{store: s}); err != nil {
		s.wallets = snapshot
		s.entries = s.entries[:entryCount]
		return err
	}
	return nil
}

func (t *memTx) WalletForUpdate(_ context.Context, userID string) (Wallet, error) {
	w, ok := t.store.wallets[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (t *memTx) AdjustBalance(_ context.Context, userID string, delta int64) (int64, error) {
	w, ok := t.store.wallets[userID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	if w.TokenBalance+delta < 0 {
		return 0, ErrNegativeBalance
	}
	w.TokenBalance += delta
	t.store.wallets[userID] = w
	return w.TokenBalance, nil
}

func (t *memTx) AppendEntry(_ context.Context, entry Entry) error {
	if err := t.store.appendErr; err != nil {
		t.store.appendErr = nil
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	t.store.entries = append(t.store.entries, entry)
	return nil
}

// Wallet reads a wallet outside of a transaction.
func (s *MemoryStore) Wallet(_ context.Context, userID string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

// CreateWallet provisions a zero-balance wallet.
func (s *MemoryStore) CreateWallet(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wallets[userID]; !exists {
		s.wallets[userID] = Wallet{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	return nil
}

// Entries lists the user's ledger rows, newest first.
func (s *MemoryStore) Entries(_ context.Context, userID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}
