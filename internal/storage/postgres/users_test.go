package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestUserRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}

	const selectByLogin = "SELECT id, login, name, password_hash, role, created_at FROM users WHERE login="
	const selectByID = "SELECT id, login, name, password_hash, role, created_at FROM users WHERE id="
	userCols := []string{"id", "login", "name", "password_hash", "role", "created_at"}

	createdAt := time.Now()
	mock.ExpectQuery(q("INSERT INTO users")).WithArgs("user", "User", "hash", "buyer").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt),
	)
	user, err := repo.Create(context.Background(), model.User{Login: "user", Name: "User", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 1 || user.Login != "user" || user.Role != model.RoleBuyer {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery(q("INSERT INTO users")).WithArgs("root", "", "hash", "admin").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), model.User{Login: "root", PasswordHash: "hash", Role: model.RoleAdmin}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery(q("INSERT INTO users")).WithArgs("user", "", "hash", "buyer").WillReturnError(errors.New("other"))
	if _, err := repo.Create(context.Background(), model.User{Login: "user", PasswordHash: "hash"}); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery(q(selectByLogin)).WithArgs("user").WillReturnRows(
		pgxmockv3.NewRows(userCols).AddRow(int64(1), "user", "User", "hash", "admin", createdAt))
	got, err := repo.GetByLogin(context.Background(), "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Role != model.RoleAdmin || got.Name != "User" {
		t.Fatalf("unexpected user: %+v", got)
	}

	mock.ExpectQuery(q(selectByLogin)).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByLogin(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(q(selectByLogin)).WithArgs("err").WillReturnError(errors.New("fail"))
	if _, err := repo.GetByLogin(context.Background(), "err"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery(q(selectByID)).WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(userCols).AddRow(int64(1), "user", "", "hash", "buyer", createdAt))
	if _, err := repo.GetByID(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery(q(selectByID)).WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
