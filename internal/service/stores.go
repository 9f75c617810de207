// Package service holds the business rules of the store catalog and the
// legacy inventory, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophStore/internal/models"
)

// StoreRepository defines the persistence operations needed by the StoreService.
type StoreRepository interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	GetStore(ctx context.Context, id string) (*models.Store, error)
}

// PasswordVerifier checks a password against its stored hash.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// TokenIssuer issues session tokens for an authenticated store.
type TokenIssuer interface {
	Issue(storeID string) (string, error)
}

// StoreService lists stores and authenticates them.
type StoreService struct {
	repo     StoreRepository
	verifier PasswordVerifier
	tokens   TokenIssuer
}

// NewStoreService constructs a StoreService.
func NewStoreService(repo StoreRepository, verifier PasswordVerifier, tokens TokenIssuer) *StoreService {
	return &StoreService{repo: repo, verifier: verifier, tokens: tokens}
}

// List returns every store. Credentials are never serialized.
func (s *StoreService) List(ctx context.Context) ([]models.Store, error) {
	return s.repo.ListStores(ctx)
}

// Authenticate checks the store's password and returns the store with a
// session token. An unknown store and a wrong password are indistinguishable.
func (s *StoreService) Authenticate(ctx context.Context, storeID, password string) (*models.Store, string, error) {
	if storeID == "" || password == "" {
		return nil, "", models.ErrInvalidCredentials
	}

	store, err := s.repo.GetStore(ctx, storeID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("get store: %w", err)
	}

	if !s.verifier.Verify(password, store.PasswordHash) {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(store.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return store, token, nil
}
