package test

import (
	"errors"
	"fmt"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues "token-<id>-<role>" strings unless overridden.
type StrategyStub struct {
	IssueFn func(model.Session) (string, error)
	ParseFn func(string) (model.Session, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(session model.Session) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(session)
	}
	return fmt.Sprintf("token-%d-%s", session.UserID, session.Role), nil
}

// ParseToken parses tokens produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (model.Session, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	var (
		id   int64
		role string
	)
	if _, err := fmt.Sscanf(token, "token-%d-%s", &id, &role); err != nil {
		return model.Session{}, pkgAuth.ErrInvalidToken
	}
	return model.Session{UserID: id, Role: model.Role(role)}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// SessionVerifierStub implements middleware session verification.
type SessionVerifierStub struct {
	Session  model.Session
	Err      error
	VerifyFn func(string) (model.Session, error)
}

// VerifySession either delegates to override or returns predefined result.
func (s SessionVerifierStub) VerifySession(token string) (model.Session, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(token)
	}
	if s.Err != nil {
		return model.Session{}, s.Err
	}
	return s.Session, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
