package token

// SeedWallet is a test helper that provisions a wallet with a starting balance
// when using the in-memory store.
func SeedWallet(s Store, userID string, balance int64) {
	if mem, ok := s.(*MemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		w := mem.wallets[userID]
		w.UserID = userID
		w.TokenBalance = balance
		mem.wallets[userID] = w
	}
}

// FailNextAppend arms the in-memory store so the next ledger append inside a
// transaction fails with err, exercising the rollback path.
func FailNextAppend(s Store, err error) {
	if mem, ok := s.(*MemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.appendErr = err
	}
}
