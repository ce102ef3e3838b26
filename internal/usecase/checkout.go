package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/adapter/payment"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Checkout outcomes reported to CheckoutMetrics.
const (
	OutcomeSuccess      = "success"
	OutcomeReplayed     = "replayed"
	OutcomeDeclined     = "declined"
	OutcomeUnknown      = "unknown"
	OutcomeGatewayError = "gateway_error"
	OutcomeInProgress   = "in_progress"
	OutcomeInconsistent = "inconsistent"
	OutcomeRejected     = "rejected"
)

const (
	abandonedPending = "abandoned before the charge outcome was recorded"
	abandonedCharged = "abandoned after the charge succeeded without an order"
)

// CheckoutMetrics counts checkout results.
type CheckoutMetrics interface {
	CheckoutOutcome(outcome string)
	PostPaymentInconsistency()
}

// CheckoutUseCase charges the cart and turns a successful payment into an order.
//
// A checkout is identified by its idempotency key. Concurrent submissions of
// the same key share one execution. A second checkout of the same buyer is
// refused while one runs. Retries of a finished key return the result kept in
// the attempt record instead of charging again.
type CheckoutUseCase struct {
	carts     *CartUseCase
	products  repository.ProductRepository
	ledger    *OrderLedger
	attempts  repository.CheckoutAttemptRepository
	gateway   payment.Gateway
	publisher events.Publisher
	metrics   CheckoutMetrics
	logger    *slog.Logger

	flights singleflight.Group
	locks   sync.Map
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	carts *CartUseCase,
	products repository.ProductRepository,
	ledger *OrderLedger,
	attempts repository.CheckoutAttemptRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	metrics CheckoutMetrics,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		carts:     carts,
		products:  products,
		ledger:    ledger,
		attempts:  attempts,
		gateway:   gateway,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "checkout")),
	}
}

// IdempotencyKey derives the checkout key. A client supplied key replaces the
// cart contents; the payment nonce is always part of the key, so new card
// details start a new attempt.
func IdempotencyKey(userID int64, clientKey string, cart model.Cart, nonce string) string {
	parts := []string{strconv.FormatInt(userID, 10)}
	if clientKey = strings.TrimSpace(clientKey); clientKey != "" {
		parts = append(parts, clientKey, nonce)
	} else {
		parts = append(parts, strings.Join(cart.Snapshot(), ","), nonce)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Prepare issues a client token and prices the cached cart for display.
func (c *CheckoutUseCase) Prepare(ctx context.Context, session model.Session) (*model.CheckoutPreview, error) {
	if session.UserID <= 0 {
		return nil, domainErrors.ErrAuthentication
	}

	token, err := c.gateway.ClientToken(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrGatewayAuth) {
			c.logger.Error("gateway rejected credentials", slog.Any("error", err))
			return nil, domainErrors.ErrGatewayAuth
		}
		c.logger.Error("failed to obtain client token", slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}

	cart, err := c.carts.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	items, total, err := c.price(ctx, cart)
	if err != nil {
		return nil, err
	}
	return &model.CheckoutPreview{ClientToken: token, Items: items, Total: total}, nil
}

// Checkout charges the buyer's persisted cart and records the order.
func (c *CheckoutUseCase) Checkout(ctx context.Context, session model.Session, nonce, clientKey string) (*model.Order, error) {
	if session.UserID <= 0 {
		return nil, fmt.Errorf("%w: buyer is required", domainErrors.ErrValidation)
	}
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return nil, fmt.Errorf("%w: payment nonce is required", domainErrors.ErrValidation)
	}

	seen, err := c.carts.Sync(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	key := IdempotencyKey(session.UserID, clientKey, seen, nonce)
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flights.Do(key, func() (any, error) {
		return c.run(flightCtx, session.UserID, seen, nonce, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Order), nil
}

// run charges the cart under the buyer lock. seen is the cart the key was
// derived from; the cart is read again once the lock is held.
func (c *CheckoutUseCase) run(ctx context.Context, buyerID int64, seen model.Cart, nonce, key string) (*model.Order, error) {
	lock := c.lockFor(buyerID)
	if !lock.TryLock() {
		c.metrics.CheckoutOutcome(OutcomeInProgress)
		return nil, domainErrors.ErrCheckoutInProgress
	}
	defer lock.Unlock()

	cart, err := c.carts.Sync(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if cart.IsEmpty() {
		// a finished checkout consumes the cart, so a retry of its key lands here
		attempt, err := c.attempts.Get(ctx, key)
		switch {
		case err == nil:
			return c.replay(ctx, attempt)
		case !errors.Is(err, domainErrors.ErrNotFound):
			c.logger.Error("failed to look up checkout attempt", slog.Int64("buyer_id", buyerID), slog.Any("error", err))
			return nil, domainErrors.ErrOperation
		}
		c.metrics.CheckoutOutcome(OutcomeRejected)
		return nil, fmt.Errorf("%w: cart is empty", domainErrors.ErrValidation)
	}
	if !slices.Equal(cart.Snapshot(), seen.Snapshot()) {
		c.metrics.CheckoutOutcome(OutcomeRejected)
		return nil, fmt.Errorf("%w: cart changed during checkout", domainErrors.ErrValidation)
	}

	items, total, err := c.price(ctx, cart)
	if err != nil {
		c.metrics.CheckoutOutcome(OutcomeRejected)
		return nil, err
	}

	attempt, created, err := c.attempts.Begin(ctx, model.CheckoutAttempt{
		Key:     key,
		BuyerID: buyerID,
		Amount:  total,
		State:   model.CheckoutStatePending,
	})
	if err != nil {
		c.logger.Error("failed to record checkout attempt", slog.Int64("buyer_id", buyerID), slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}
	if !created {
		return c.replay(ctx, attempt)
	}

	log := c.logger.With(slog.Int64("buyer_id", buyerID), slog.String("idempotency_key", key))

	result, err := c.gateway.Charge(ctx, model.ChargeRequest{Nonce: nonce, Amount: total, IdempotencyKey: key})
	switch {
	case errors.Is(err, domainErrors.ErrGatewayAuth):
		log.Error("gateway rejected credentials", slog.Any("error", err))
		if discardErr := c.attempts.Discard(ctx, key); discardErr != nil {
			log.Error("failed to discard checkout attempt", slog.Any("error", discardErr))
		}
		c.metrics.CheckoutOutcome(OutcomeGatewayError)
		return nil, domainErrors.ErrGatewayAuth
	case err != nil:
		log.Error("charge outcome unknown", slog.String("amount", total.StringFixed(2)), slog.Any("error", err))
		c.settle(ctx, log, attempt, model.CheckoutStateUnknown, "", err.Error(), nil)
		c.metrics.CheckoutOutcome(OutcomeUnknown)
		return nil, domainErrors.ErrChargeOutcomeUnknown
	case !result.Success:
		log.Info("charge declined", slog.String("status", result.Status), slog.String("message", result.Message))
		c.settle(ctx, log, attempt, model.CheckoutStateDeclined, result.TransactionID, result.Message, nil)
		c.metrics.CheckoutOutcome(OutcomeDeclined)
		return nil, declined(result.Message)
	}

	c.settle(ctx, log, attempt, model.CheckoutStateCharged, result.TransactionID, "", nil)

	order, err := c.ledger.CreateOrder(ctx, buyerID, items, model.NewPaymentOutcome(result, total), key)
	if err != nil {
		attempt.TransactionID = result.TransactionID
		return nil, c.inconsistent(ctx, log, attempt, err)
	}

	c.settle(ctx, log, attempt, model.CheckoutStateCompleted, result.TransactionID, "", order)
	if _, err := c.carts.Consume(ctx, buyerID, cart.Items); err != nil {
		log.Warn("failed to remove charged items from cart", slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}
	c.metrics.CheckoutOutcome(OutcomeSuccess)
	return order, nil
}

// ResolveAbandoned settles an attempt whose checkout stopped before recording
// its outcome. Buyers with a checkout running in this process are skipped with
// ErrCheckoutInProgress.
func (c *CheckoutUseCase) ResolveAbandoned(ctx context.Context, attempt model.CheckoutAttempt) (model.CheckoutState, error) {
	lock := c.lockFor(attempt.BuyerID)
	if !lock.TryLock() {
		return attempt.State, domainErrors.ErrCheckoutInProgress
	}
	defer lock.Unlock()

	log := c.logger.With(slog.Int64("buyer_id", attempt.BuyerID), slog.String("idempotency_key", attempt.Key))

	switch attempt.State {
	case model.CheckoutStatePending:
		log.Warn("checkout abandoned before the charge outcome was recorded", slog.String("amount", attempt.Amount.StringFixed(2)))
		c.settle(ctx, log, &attempt, model.CheckoutStateUnknown, attempt.TransactionID, abandonedPending, nil)
		c.metrics.CheckoutOutcome(OutcomeUnknown)
	case model.CheckoutStateCharged:
		order, err := c.ledger.FindByIdempotencyKey(ctx, attempt.Key)
		switch {
		case err == nil:
			c.settle(ctx, log, &attempt, model.CheckoutStateCompleted, attempt.TransactionID, "", order)
		case errors.Is(err, domainErrors.ErrNotFound):
			_ = c.inconsistent(ctx, log, &attempt, errors.New(abandonedCharged))
		default:
			return attempt.State, err
		}
	}
	return attempt.State, nil
}

// replay answers a key that was already used without charging again.
func (c *CheckoutUseCase) replay(ctx context.Context, attempt *model.CheckoutAttempt) (*model.Order, error) {
	switch attempt.State {
	case model.CheckoutStateCompleted:
		order, err := c.recordedOrder(ctx, attempt)
		if err != nil {
			return nil, err
		}
		c.metrics.CheckoutOutcome(OutcomeReplayed)
		return order, nil
	case model.CheckoutStateCharged:
		order, err := c.ledger.FindByIdempotencyKey(ctx, attempt.Key)
		if err == nil {
			c.settle(ctx, c.logger, attempt, model.CheckoutStateCompleted, attempt.TransactionID, "", order)
			c.metrics.CheckoutOutcome(OutcomeReplayed)
			return order, nil
		}
		c.metrics.CheckoutOutcome(OutcomeInProgress)
		return nil, domainErrors.ErrCheckoutInProgress
	case model.CheckoutStateDeclined:
		c.metrics.CheckoutOutcome(OutcomeDeclined)
		return nil, declined(attempt.Failure)
	case model.CheckoutStateUnknown:
		c.metrics.CheckoutOutcome(OutcomeUnknown)
		return nil, domainErrors.ErrChargeOutcomeUnknown
	case model.CheckoutStateInconsistent:
		c.metrics.CheckoutOutcome(OutcomeInconsistent)
		return nil, &domainErrors.PostPaymentInconsistencyError{
			IdempotencyKey: attempt.Key,
			TransactionID:  attempt.TransactionID,
			Err:            errors.New(attempt.Failure),
		}
	default:
		c.metrics.CheckoutOutcome(OutcomeInProgress)
		return nil, domainErrors.ErrCheckoutInProgress
	}
}

func (c *CheckoutUseCase) recordedOrder(ctx context.Context, attempt *model.CheckoutAttempt) (*model.Order, error) {
	if attempt.OrderID != nil {
		return c.ledger.GetOrder(ctx, *attempt.OrderID)
	}
	return c.ledger.FindByIdempotencyKey(ctx, attempt.Key)
}

// inconsistent raises the alert for money captured without an order.
func (c *CheckoutUseCase) inconsistent(ctx context.Context, log *slog.Logger, attempt *model.CheckoutAttempt, cause error) error {
	log.Error("payment captured but order was not recorded",
		slog.Bool("alert", true),
		slog.String("transaction_id", attempt.TransactionID),
		slog.String("amount", attempt.Amount.StringFixed(2)),
		slog.Any("error", cause),
	)
	c.settle(ctx, log, attempt, model.CheckoutStateInconsistent, attempt.TransactionID, cause.Error(), nil)
	c.metrics.PostPaymentInconsistency()
	c.metrics.CheckoutOutcome(OutcomeInconsistent)
	publish(ctx, c.publisher, log, events.PostPaymentInconsistency(*attempt, cause))
	return &domainErrors.PostPaymentInconsistencyError{
		IdempotencyKey: attempt.Key,
		TransactionID:  attempt.TransactionID,
		Err:            cause,
	}
}

// settle moves the attempt to state. Failures are logged and never abort the checkout.
func (c *CheckoutUseCase) settle(ctx context.Context, log *slog.Logger, attempt *model.CheckoutAttempt, state model.CheckoutState, transactionID, failure string, order *model.Order) {
	attempt.State = state
	attempt.TransactionID = transactionID
	attempt.Failure = failure
	if order != nil {
		id := order.ID
		attempt.OrderID = &id
	}
	if err := c.attempts.Update(ctx, *attempt); err != nil {
		log.Error("failed to update checkout attempt", slog.String("state", string(state)), slog.Any("error", err))
	}
}

// price snapshots cart entries at current catalog prices.
func (c *CheckoutUseCase) price(ctx context.Context, cart model.Cart) ([]model.OrderItem, decimal.Decimal, error) {
	if cart.IsEmpty() {
		return []model.OrderItem{}, decimal.Zero, nil
	}
	products, err := c.products.GetByIDs(ctx, cart.Items)
	if err != nil {
		c.logger.Error("failed to load cart products", slog.Int64("buyer_id", cart.UserID), slog.Any("error", err))
		return nil, decimal.Zero, domainErrors.ErrOperation
	}
	for _, id := range cart.Items {
		if _, ok := products[id]; !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s is no longer available", domainErrors.ErrValidation, id)
		}
	}
	items := model.SnapshotItems(cart.Items, products)
	return items, model.Total(items), nil
}

func (c *CheckoutUseCase) lockFor(buyerID int64) *sync.Mutex {
	lock, _ := c.locks.LoadOrStore(buyerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func declined(message string) error {
	if message == "" {
		return domainErrors.ErrChargeDeclined
	}
	return fmt.Errorf("%w: %s", domainErrors.ErrChargeDeclined, message)
}
