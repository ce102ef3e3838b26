package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle and session tokens.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a buyer account and returns its session token.
func (u *AuthUseCase) Register(ctx context.Context, login, password, name string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
			return nil, "", fmt.Errorf("%w: %v", domainErrors.ErrValidation, err)
		}
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, model.User{
		Login:        login,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         model.RoleBuyer,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Authenticate validates credentials and returns session token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// VerifySession resolves token into the caller identity.
func (u *AuthUseCase) VerifySession(token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, domainErrors.ErrAuthentication
	}
	session, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", domainErrors.ErrAuthentication, err)
	}
	return session, nil
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	role := usr.Role
	if role == "" {
		role = model.RoleBuyer
	}
	return u.tokens.IssueToken(model.Session{UserID: usr.ID, Role: role})
}
