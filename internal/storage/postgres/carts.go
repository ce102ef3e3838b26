package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

func (r *cartRepository) Items(ctx context.Context, userID int64) ([]string, error) {
	if err := ensureUser(ctx, r.storage.pool, userID); err != nil {
		return nil, err
	}
	return listCartItems(ctx, r.storage.pool, userID)
}

func (r *cartRepository) Add(ctx context.Context, userID int64, productIDs ...string) ([]string, error) {
	var items []string
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		const insert = `INSERT INTO cart_items (user_id, product_id) VALUES ($1, $2)`
		for _, productID := range productIDs {
			if _, err := tx.Exec(ctx, insert, userID, productID); err != nil {
				if isPgError(err, pgForeignKeyViolation) {
					return fmt.Errorf("unknown product %q: %w", productID, domainErrors.ErrValidation)
				}
				return err
			}
		}
		var err error
		items, err = listCartItems(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) Remove(ctx context.Context, userID int64, productID string) ([]string, error) {
	return r.RemoveEach(ctx, userID, productID)
}

func (r *cartRepository) RemoveEach(ctx context.Context, userID int64, productIDs ...string) ([]string, error) {
	var items []string
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		const remove = `DELETE FROM cart_items WHERE id = (
                            SELECT id FROM cart_items WHERE user_id=$1 AND product_id=$2 ORDER BY id LIMIT 1
                        )`
		for _, productID := range productIDs {
			if _, err := tx.Exec(ctx, remove, userID, productID); err != nil {
				return err
			}
		}
		var err error
		items, err = listCartItems(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
		return err
	})
}

func ensureUser(ctx context.Context, q querier, userID int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domainErrors.ErrNotFound
	}
	return nil
}

func listCartItems(ctx context.Context, q querier, userID int64) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT product_id FROM cart_items WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		items = append(items, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
