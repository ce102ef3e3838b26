package auth

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type Strategy interface {
	IssueToken(session model.Session) (string, error)
	ParseToken(token string) (model.Session, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
