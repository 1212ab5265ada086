package identity

import (
	"context"
	"sync"

	"github.com/tokengrid/tokengrid/internal/token"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]User
	wallets token.Store
}

// NewMemoryRepository builds an in-memory user store for tests and dev mode.
// When a wallet store is supplied, Create provisions the zero-balance wallet
// the way the Postgres repository does inside its transaction.
func NewMemoryRepository(wallets token.Store) Repository {
	return &memoryRepository{byEmail: make(map[string]User), wallets: wallets}
}

func (r *memoryRepository) Create(ctx context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	r.byEmail[user.Email] = user
	if r.wallets != nil {
		if err := r.wallets.CreateWallet(ctx, user.ID); err != nil {
			delete(r.byEmail, user.Email)
			return err
		}
	}
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}
