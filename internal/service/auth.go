package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const DefaultSessionTTL = 12 * time.Hour

type AuthService struct {
	Repo       *repo.GormRepo
	Secret     []byte
	SessionTTL time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login checks the credentials and issues an admin session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrAuthentication)
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrAuthentication)
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrPersistence, err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid username or password", ErrAuthentication)
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.SignAdminToken(user.ID, user.Username, s.Secret, exp)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp}, nil
}
