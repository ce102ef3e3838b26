package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/adapter/events"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

var (
	admin = model.Session{UserID: 100, Role: model.RoleAdmin}
	buyer = model.Session{UserID: 1, Role: model.RoleBuyer}
)

func newStatusManager(t *testing.T, policy StatusPolicy) (*OrderStatusManager, *testhelpers.OrderRepositoryStub, *testhelpers.PublisherStub, *model.Order) {
	t.Helper()
	orders := testhelpers.NewOrderRepositoryStub()
	publisher := &testhelpers.PublisherStub{}
	ledger := NewOrderLedger(orders, publisher, discardLogger())
	order, err := ledger.CreateOrder(context.Background(), buyer.UserID, []model.OrderItem{{ProductID: "p1"}}, successfulPayment(), "k")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return NewOrderStatusManager(ledger, orders, publisher, policy, discardLogger()), orders, publisher, order
}

func TestSetStatusAnyTransitionIsAllowedByDefault(t *testing.T) {
	mgr, _, _, order := newStatusManager(t, StatusPolicy{})
	ctx := context.Background()

	sequence := []model.OrderStatus{
		model.OrderStatusDelivered,
		model.OrderStatusNotProcessed,
		model.OrderStatusCancelled,
		model.OrderStatusShipped,
		model.OrderStatusProcessing,
	}
	for _, status := range sequence {
		updated, err := mgr.SetStatus(ctx, admin, order.ID, status)
		if err != nil {
			t.Fatalf("set %q: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %q, got %q", status, updated.Status)
		}
	}
}

func TestSetStatusVisibleToBuyer(t *testing.T) {
	mgr, _, publisher, order := newStatusManager(t, StatusPolicy{})
	ctx := context.Background()

	if _, err := mgr.SetStatus(ctx, admin, order.ID, model.OrderStatusProcessing); err != nil {
		t.Fatalf("set status: %v", err)
	}
	orders, err := mgr.BuyerOrders(ctx, buyer)
	if err != nil {
		t.Fatalf("buyer orders: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != model.OrderStatusProcessing {
		t.Fatalf("unexpected buyer view %+v", orders)
	}

	types := publisher.Types()
	if len(types) != 2 || types[1] != events.TypeOrderStatusChanged {
		t.Fatalf("unexpected events %v", types)
	}
}

func TestSetStatusRequiresAdmin(t *testing.T) {
	mgr, orders, _, order := newStatusManager(t, StatusPolicy{})

	if _, err := mgr.SetStatus(context.Background(), buyer, order.ID, model.OrderStatusShipped); err != domainErrors.ErrAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	// authorization is checked before the status value
	if _, err := mgr.SetStatus(context.Background(), buyer, order.ID, "bogus"); err != domainErrors.ErrAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != model.OrderStatusNotProcessed {
		t.Fatalf("status must be unchanged, got %q", stored.Status)
	}
}

func TestSetStatusValidation(t *testing.T) {
	mgr, _, _, order := newStatusManager(t, StatusPolicy{})
	ctx := context.Background()

	if _, err := mgr.SetStatus(ctx, admin, order.ID, "Lost"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := mgr.SetStatus(ctx, admin, uuid.Nil, model.OrderStatusShipped); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := mgr.SetStatus(ctx, admin, uuid.New(), model.OrderStatusShipped); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusStoreFailure(t *testing.T) {
	mgr, orders, _, order := newStatusManager(t, StatusPolicy{})
	orders.UpdateErr = errors.New("db down")

	if _, err := mgr.SetStatus(context.Background(), admin, order.ID, model.OrderStatusShipped); err != domainErrors.ErrOperation {
		t.Fatalf("expected operation error, got %v", err)
	}
}

func TestSetStatusStrictTransitions(t *testing.T) {
	mgr, _, _, order := newStatusManager(t, StatusPolicy{StrictTransitions: true})
	ctx := context.Background()

	if _, err := mgr.SetStatus(ctx, admin, order.ID, model.OrderStatusShipped); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected skipped step to be rejected, got %v", err)
	}
	for _, status := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusCancelled} {
		if _, err := mgr.SetStatus(ctx, admin, order.ID, status); err != nil {
			t.Fatalf("set %q: %v", status, err)
		}
	}
	if _, err := mgr.SetStatus(ctx, admin, order.ID, model.OrderStatusProcessing); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected cancelled order to be final, got %v", err)
	}
}

func TestOrderViews(t *testing.T) {
	mgr, _, _, _ := newStatusManager(t, StatusPolicy{})
	ctx := context.Background()

	if _, err := mgr.AllOrders(ctx, buyer); err != domainErrors.ErrAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	all, err := mgr.AllOrders(ctx, admin)
	if err != nil || len(all) != 1 {
		t.Fatalf("unexpected admin view %+v err=%v", all, err)
	}
	if _, err := mgr.BuyerOrders(ctx, model.Session{}); err != domainErrors.ErrAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
	mine, err := mgr.BuyerOrders(ctx, model.Session{UserID: 2, Role: model.RoleBuyer})
	if err != nil || len(mine) != 0 {
		t.Fatalf("expected no orders for other buyer, got %+v err=%v", mine, err)
	}
}
