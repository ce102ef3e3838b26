package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func (r *checkoutAttemptRepository) Begin(ctx context.Context, attempt model.CheckoutAttempt) (*model.CheckoutAttempt, bool, error) {
	const query = `INSERT INTO checkout_attempts (idempotency_key, buyer_id, amount, state)
                   VALUES ($1, $2, $3::numeric, $4)
                   ON CONFLICT (idempotency_key) DO NOTHING
                   RETURNING created_at, updated_at`
	if attempt.State == "" {
		attempt.State = model.CheckoutStatePending
	}
	err := r.storage.pool.QueryRow(ctx, query, attempt.Key, attempt.BuyerID, attempt.Amount.String(), string(attempt.State)).
		Scan(&attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.Get(ctx, attempt.Key)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return &attempt, true, nil
}

var attemptColumns = []string{
	"idempotency_key", "buyer_id", "amount::text", "state", "transaction_id", "order_id", "failure", "created_at", "updated_at",
}

func (r *checkoutAttemptRepository) Get(ctx context.Context, key string) (*model.CheckoutAttempt, error) {
	query, args := r.storage.qb.Select(attemptColumns...).
		From("checkout_attempts").
		Where("idempotency_key=?", key).
		MustSql()
	a, err := scanAttempt(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListStale returns attempts stuck in one of states since before, oldest first.
func (r *checkoutAttemptRepository) ListStale(ctx context.Context, states []model.CheckoutState, before time.Time, limit int) ([]model.CheckoutAttempt, error) {
	names := make([]string, 0, len(states))
	for _, st := range states {
		names = append(names, string(st))
	}
	if limit <= 0 {
		limit = 1
	}
	query, args := r.storage.qb.Select(attemptColumns...).
		From("checkout_attempts").
		Where(sq.Eq{"state": names}).
		Where(sq.Lt{"updated_at": before}).
		OrderBy("updated_at").
		Limit(uint64(limit)).
		MustSql()

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.CheckoutAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (model.CheckoutAttempt, error) {
	var (
		a       model.CheckoutAttempt
		amount  string
		state   string
		orderID uuid.NullUUID
	)
	if err := row.Scan(&a.Key, &a.BuyerID, &amount, &state, &a.TransactionID, &orderID, &a.Failure, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	var err error
	if a.Amount, err = decimal.NewFromString(amount); err != nil {
		return a, fmt.Errorf("parse attempt amount: %w", err)
	}
	a.State = model.CheckoutState(state)
	if orderID.Valid {
		id := orderID.UUID
		a.OrderID = &id
	}
	return a, nil
}

func (r *checkoutAttemptRepository) Update(ctx context.Context, attempt model.CheckoutAttempt) error {
	const query = `UPDATE checkout_attempts
                   SET state=$2, transaction_id=$3, order_id=$4, failure=$5, updated_at=NOW()
                   WHERE idempotency_key=$1`
	var orderID *string
	if attempt.OrderID != nil {
		id := attempt.OrderID.String()
		orderID = &id
	}
	tag, err := r.storage.pool.Exec(ctx, query, attempt.Key, string(attempt.State), attempt.TransactionID, orderID, attempt.Failure)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows)
	}
	return nil
}

// Discard removes an attempt that never reached the processor so its key can be reused.
func (r *checkoutAttemptRepository) Discard(ctx context.Context, key string) error {
	const query = `DELETE FROM checkout_attempts WHERE idempotency_key=$1 AND state=$2`
	_, err := r.storage.pool.Exec(ctx, query, key, string(model.CheckoutStatePending))
	return err
}
