package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

var productColumns = []string{"id", "name", "description", "price::text", "photo IS NOT NULL"}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query, args := r.storage.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		MustSql()

	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	result := make(map[string]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args := r.storage.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": uniqueStrings(ids)}).
		MustSql()

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p     model.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.HasPhoto); err != nil {
		return model.Product{}, err
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price of %s: %w", p.ID, err)
	}
	p.Price = amount
	return p, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
