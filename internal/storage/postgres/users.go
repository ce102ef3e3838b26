package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	const query = `INSERT INTO users (login, name, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if user.Role == "" {
		user.Role = model.RoleBuyer
	}
	err := r.storage.pool.QueryRow(ctx, query, user.Login, user.Name, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, name, password_hash, role, created_at FROM users WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, name, password_hash, role, created_at FROM users WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Login, &u.Name, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	u.Role = model.Role(role)
	return &u, nil
}
