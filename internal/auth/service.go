package auth

import (
	"github.com/tokengrid/tokengrid/internal/config"
	"github.com/tokengrid/tokengrid/internal/identity"
)

// Service issues session tokens for authenticated users.
type Service struct {
	cfg config.Config
}

// NewService builds the auth service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Session is the token payload returned after registration or login.
type Session struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login issues a session token for an already-authenticated user.
func (s *Service) Login(user identity.User) (Session, error) {
	signed, err := IssueSessionToken(user.ID, []byte(s.cfg.JWTSecret), s.cfg.JWTExpiry)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:    user.ID,
		Token:     signed,
		ExpiresIn: int64(s.cfg.JWTExpiry.Seconds()),
	}, nil
}

// Verify validates a session token and returns the bound user id.
func (s *Service) Verify(tokenStr string) (string, error) {
	return VerifySessionToken(tokenStr, []byte(s.cfg.JWTSecret))
}
