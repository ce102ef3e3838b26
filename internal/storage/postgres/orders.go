package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var orderColumns = []string{
	"o.id", "o.buyer_id", "COALESCE(NULLIF(u.name, ''), u.login)", "o.status",
	"o.payment_success", "o.transaction_id", "o.transaction_status", "o.amount::text",
	"o.idempotency_key", "o.created_at", "o.updated_at",
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = model.OrderStatusNotProcessed
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders
                (id, buyer_id, status, payment_success, transaction_id, transaction_status, amount, idempotency_key)
                VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
                RETURNING created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			order.ID.String(), order.BuyerID, string(order.Status), order.Payment.Success,
			order.Payment.TransactionID, order.Payment.TransactionStatus, order.Payment.Amount.String(),
			order.IdempotencyKey,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isPgError(err, pgUniqueViolation) {
				return domainErrors.ErrAlreadyExists
			}
			if isPgError(err, pgForeignKeyViolation) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if len(order.Items) == 0 {
			return nil
		}

		insertItems := r.storage.qb.Insert("order_items").
			Columns("order_id", "position", "product_id", "name", "description", "price")
		for i, item := range order.Items {
			insertItems = insertItems.Values(order.ID.String(), i, item.ProductID, item.Name, item.Description, item.Price.String())
		}
		query, args := insertItems.MustSql()
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, sq.Eq{"o.id": id.String()})
}

func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	return r.getOne(ctx, sq.Eq{"o.idempotency_key": key})
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return r.list(ctx, r.selectOrders().Where(sq.Eq{"o.buyer_id": buyerID}).OrderBy("o.created_at", "o.id"))
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, r.selectOrders().OrderBy("o.created_at DESC", "o.id"))
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING id`
	var updated string
	if err := r.storage.pool.QueryRow(ctx, query, string(status), id.String()).Scan(&updated); err != nil {
		return nil, notFound(err)
	}
	return r.GetByID(ctx, id)
}

func (r *orderRepository) selectOrders() sq.SelectBuilder {
	return r.storage.qb.Select(orderColumns...).
		From("orders o").
		Join("users u ON u.id = o.buyer_id")
}

func (r *orderRepository) getOne(ctx context.Context, where sq.Eq) (*model.Order, error) {
	orders, err := r.list(ctx, r.selectOrders().Where(where))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	return &orders[0], nil
}

func (r *orderRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]model.Order, error) {
	query, args := builder.MustSql()
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		index[o.ID] = i
	}

	query, args := r.storage.qb.Select("order_id", "product_id", "name", "description", "price::text").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id", "position").
		MustSql()

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    model.OrderItem
			price   string
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Description, &price); err != nil {
			return err
		}
		id, err := uuid.Parse(orderID)
		if err != nil {
			return fmt.Errorf("parse order id: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse item price: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o      model.Order
		id     string
		status string
		amount string
	)
	err := row.Scan(&id, &o.BuyerID, &o.BuyerName, &status, &o.Payment.Success, &o.Payment.TransactionID,
		&o.Payment.TransactionStatus, &amount, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Order{}, err
	}
	if o.ID, err = uuid.Parse(id); err != nil {
		return model.Order{}, fmt.Errorf("parse order id: %w", err)
	}
	if o.Payment.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Order{}, fmt.Errorf("parse order amount: %w", err)
	}
	o.Status = model.OrderStatus(status)
	return o, nil
}
