package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrAccountNotFound      = errors.New("account not found")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
)

// PasswordGuard hashes and checks account secrets.
type PasswordGuard interface {
	Hash(password string) (string, error)
	Matches(password, digest string) bool
}

// TokenIssuer signs credentials for an account.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	accountRepo repository.AccountRepository
	passwords   PasswordGuard
	tokens      TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(accountRepo repository.AccountRepository, passwords PasswordGuard, tokens TokenIssuer) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		passwords:   passwords,
		tokens:      tokens,
	}
}

// RegisterInput represents the required information to create a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates a new account. Email uniqueness is decided by the store's
// unique index, not by a lookup beforehand.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	digest, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}

	account := &models.Account{
		Email:        input.Email,
		PasswordHash: digest,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the authenticated account and its fresh credential.
type LoginResult struct {
	Account *models.Account
	Token   string
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are reported separately.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !s.passwords.Matches(input.Password, account.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	return &LoginResult{Account: account, Token: token}, nil
}

// GetAccount retrieves an account by ID.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return account, nil
}
