package test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user model.User) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[user.Login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	if user.Role == "" {
		user.Role = model.RoleBuyer
	}
	user.ID = s.Next
	s.Next++
	stored := user
	s.Users[user.Login] = &stored
	s.ByID[user.ID] = &stored
	return &stored, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ProductRepositoryStub serves a fixed catalog.
type ProductRepositoryStub struct {
	Products map[string]model.Product
	Err      error
}

// NewProductRepositoryStub indexes products by id.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{Products: make(map[string]model.Product, len(products))}
	for _, p := range products {
		s.Products[p.ID] = p
	}
	return s
}

// GetByID returns product or not found.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns known products among ids.
func (s *ProductRepositoryStub) GetByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	found := make(map[string]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.Products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

// CartRepositoryStub keeps carts as ordered multisets in memory.
type CartRepositoryStub struct {
	mu       sync.Mutex
	Carts    map[int64][]string
	Products map[string]bool

	ItemsErr  error
	AddErr    error
	RemoveErr error
	ClearErr  error

	ClearCalls  int
	RemoveCalls int
}

// NewCartRepositoryStub registers the given users with empty carts.
func NewCartRepositoryStub(users ...int64) *CartRepositoryStub {
	s := &CartRepositoryStub{Carts: make(map[int64][]string)}
	for _, id := range users {
		s.Carts[id] = []string{}
	}
	return s
}

// Items returns copy of stored cart.
func (s *CartRepositoryStub) Items(ctx context.Context, userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ItemsErr != nil {
		return nil, s.ItemsErr
	}
	items, ok := s.Carts[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return append([]string{}, items...), nil
}

// Add appends product ids. When Products is set, unknown ids fail validation.
func (s *CartRepositoryStub) Add(ctx context.Context, userID int64, productIDs ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddErr != nil {
		return nil, s.AddErr
	}
	items, ok := s.Carts[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	for _, id := range productIDs {
		if s.Products != nil && !s.Products[id] {
			return nil, domainErrors.ErrValidation
		}
	}
	items = append(items, productIDs...)
	s.Carts[userID] = items
	return append([]string{}, items...), nil
}

// Remove drops the first occurrence of productID.
func (s *CartRepositoryStub) Remove(ctx context.Context, userID int64, productID string) ([]string, error) {
	return s.RemoveEach(ctx, userID, productID)
}

// RemoveEach drops one occurrence per listed id.
func (s *CartRepositoryStub) RemoveEach(ctx context.Context, userID int64, productIDs ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RemoveCalls++
	if s.RemoveErr != nil {
		return nil, s.RemoveErr
	}
	items, ok := s.Carts[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	for _, productID := range productIDs {
		for i, id := range items {
			if id == productID {
				items = append(items[:i:i], items[i+1:]...)
				break
			}
		}
	}
	s.Carts[userID] = items
	return append([]string{}, items...), nil
}

// Clear empties the cart.
func (s *CartRepositoryStub) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClearCalls++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	if _, ok := s.Carts[userID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Carts[userID] = []string{}
	return nil
}

// OrderRepositoryStub keeps orders in insertion order.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders []model.Order
	Names  map[int64]string

	CreateErr error
	ReadErr   error
	UpdateErr error
}

// NewOrderRepositoryStub constructs empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Names: map[int64]string{}}
}

// Create stores a copy of order, assigning identifier and timestamps.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, o := range s.Orders {
		if order.IdempotencyKey != "" && o.IdempotencyKey == order.IdempotencyKey {
			return domainErrors.ErrAlreadyExists
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = model.OrderStatusNotProcessed
	}
	now := time.Now().UTC().Add(time.Duration(len(s.Orders)) * time.Millisecond)
	order.CreatedAt = now
	order.UpdatedAt = now
	order.BuyerName = s.Names[order.BuyerID]
	s.Orders = append(s.Orders, *order)
	return nil
}

// GetByID returns order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	for _, o := range s.Orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByIdempotencyKey returns order created for checkout key.
func (s *OrderRepositoryStub) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	for _, o := range s.Orders {
		if o.IdempotencyKey == key {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByBuyer returns buyer orders in insertion order.
func (s *OrderRepositoryStub) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	orders := []model.Order{}
	for _, o := range s.Orders {
		if o.BuyerID == buyerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// ListAll returns every order newest first.
func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	orders := append([]model.Order{}, s.Orders...)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// UpdateStatus overwrites status of stored order.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].Status = status
			s.Orders[i].UpdatedAt = time.Now().UTC()
			order := s.Orders[i]
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Count returns number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// CheckoutAttemptRepositoryStub stores attempts keyed by idempotency token.
type CheckoutAttemptRepositoryStub struct {
	mu       sync.Mutex
	Attempts map[string]model.CheckoutAttempt

	BeginErr  error
	GetErr    error
	UpdateErr error
	ListErr   error
}

// NewCheckoutAttemptRepositoryStub constructs empty attempt store.
func NewCheckoutAttemptRepositoryStub() *CheckoutAttemptRepositoryStub {
	return &CheckoutAttemptRepositoryStub{Attempts: make(map[string]model.CheckoutAttempt)}
}

// Begin inserts attempt unless key is already known.
func (s *CheckoutAttemptRepositoryStub) Begin(ctx context.Context, attempt model.CheckoutAttempt) (*model.CheckoutAttempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BeginErr != nil {
		return nil, false, s.BeginErr
	}
	if existing, ok := s.Attempts[attempt.Key]; ok {
		return &existing, false, nil
	}
	now := time.Now().UTC()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	s.Attempts[attempt.Key] = attempt
	return &attempt, true, nil
}

// Get returns stored attempt or not found.
func (s *CheckoutAttemptRepositoryStub) Get(ctx context.Context, key string) (*model.CheckoutAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	attempt, ok := s.Attempts[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &attempt, nil
}

// Update replaces mutable attempt fields.
func (s *CheckoutAttemptRepositoryStub) Update(ctx context.Context, attempt model.CheckoutAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	stored, ok := s.Attempts[attempt.Key]
	if !ok {
		return domainErrors.ErrNotFound
	}
	stored.State = attempt.State
	stored.TransactionID = attempt.TransactionID
	stored.OrderID = attempt.OrderID
	stored.Failure = attempt.Failure
	stored.UpdatedAt = time.Now().UTC()
	s.Attempts[attempt.Key] = stored
	return nil
}

// Discard deletes pending attempt.
func (s *CheckoutAttemptRepositoryStub) Discard(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.Attempts[key]; ok && attempt.State == model.CheckoutStatePending {
		delete(s.Attempts, key)
	}
	return nil
}

// ListStale returns attempts in states last updated before the cutoff, oldest first.
func (s *CheckoutAttemptRepositoryStub) ListStale(ctx context.Context, states []model.CheckoutState, before time.Time, limit int) ([]model.CheckoutAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := []model.CheckoutAttempt{}
	for _, attempt := range s.Attempts {
		if attempt.UpdatedAt.Before(before) && slices.Contains(states, attempt.State) {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// State returns the stored state for key.
func (s *CheckoutAttemptRepositoryStub) State(key string) model.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Attempts[key].State
}
