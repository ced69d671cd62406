package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/events"
	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ShippingFee and TaxFee are charged once per order.
	ShippingFee = decimal.RequireFromString("3.99")
	TaxFee      = decimal.RequireFromString("2.00")
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) owns(o *models.Order) bool {
	return a.Admin || o.UserID == a.UserID
}

// PlaceOrderRequest is a checkout of the caller's current cart. The order
// ships to the saved address AddressID when it is set, otherwise to Address.
type PlaceOrderRequest struct {
	Address      *models.Address `json:"address,omitempty"`
	AddressID    string          `json:"addressId,omitempty"`
	DeliveryDate string          `json:"deliveryDate" validate:"required"`
	Payment      PaymentRequest  `json:"payment" validate:"required"`
}

// OrderServiceDeps collects the collaborators of OrderService.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Carts     repositories.CartRepository
	Products  repositories.ProductRepository
	Addresses repositories.AddressRepository
	Cache     cache.StatusCache
	Events    *events.Emitter
	Location  *time.Location
	Now       func() time.Time
	Logger    *zap.Logger
}

// OrderService handles checkout, order history, tracking, cancellation and reorder.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	addressRepo repositories.AddressRepository
	cache       cache.StatusCache
	events      *events.Emitter
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(d OrderServiceDeps) *OrderService {
	s := &OrderService{
		orderRepo:   d.Orders,
		cartRepo:    d.Carts,
		productRepo: d.Products,
		addressRepo: d.Addresses,
		cache:       d.Cache,
		events:      d.Events,
		loc:         d.Location,
		now:         d.Now,
		logger:      d.Logger,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.events == nil {
		s.events = events.NewEmitter(nil, "", s.logger)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// DeliveryOptions returns the delivery dates selectable right now.
func (s *OrderService) DeliveryOptions() []string {
	return lifecycle.DeliveryOptions(s.now(), s.loc)
}

// PlaceOrder turns the user's cart into an order and empties the cart.
func (s *OrderService) PlaceOrder(userID string, req PlaceOrderRequest) (*models.OrderView, error) {
	now := s.now()
	if !lo.Contains(lifecycle.DeliveryOptions(now, s.loc), req.DeliveryDate) {
		return nil, fmt.Errorf("%q is not an offered delivery date: %w", req.DeliveryDate, ErrInvalidDeliveryDate)
	}
	payment, err := BuildPaymentMethod(req.Payment)
	if err != nil {
		return nil, err
	}
	address, err := s.shippingAddress(userID, req)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	// lines whose product was removed from the catalog have no product loaded
	cart = lo.Filter(cart, func(ci models.CartItem, _ int) bool { return ci.Product.ID != "" })
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	for _, ci := range cart {
		if ci.Product.Stock < ci.Quantity {
			return nil, fmt.Errorf("%s (requested %d, available %d): %w",
				ci.Product.Title, ci.Quantity, ci.Product.Stock, ErrInsufficientStock)
		}
	}

	items := lo.Map(cart, func(ci models.CartItem, _ int) models.OrderItem {
		return ci.Product.Snapshot(ci.Quantity)
	})
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	local := now.In(s.loc)
	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         items,
		Address:       address,
		PaymentMethod: payment,
		OrderedTime:   now.UTC(),
		OrderedDate:   local.Format(lifecycle.DateLayout),
		OrderedDay:    local.Weekday().String(),
		DeliveryDate:  req.DeliveryDate,
		Status:        lifecycle.StatusOrdered,
		Subtotal:      subtotal,
		Shipping:      ShippingFee,
		Tax:           TaxFee,
		Total:         subtotal.Add(ShippingFee).Add(TaxFee),
	}

	if err := s.orderRepo.Place(order); err != nil {
		if errors.Is(err, repositories.ErrOutOfStock) {
			return nil, fmt.Errorf("%v: %w", err, ErrInsufficientStock)
		}
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	if err := s.cartRepo.Clear(userID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout", zap.String("user_id", userID), zap.Error(err))
	}

	s.logger.Info("Placed order",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("delivery_date", order.DeliveryDate))
	s.events.Emit(events.OrderCreated, events.OrderPayload{
		OrderID: order.ID,
		UserID:  userID,
		Status:  order.Status,
		Total:   order.Total.StringFixed(2),
	})

	view := s.view(*order, now, false)
	return &view, nil
}

// shippingAddress resolves where an order ships to.
func (s *OrderService) shippingAddress(userID string, req PlaceOrderRequest) (models.Address, error) {
	if req.AddressID != "" {
		if s.addressRepo == nil {
			return models.Address{}, fmt.Errorf("saved address %s: %w", req.AddressID, ErrInvalidAddress)
		}
		saved, err := s.addressRepo.GetByID(userID, req.AddressID)
		if err != nil {
			return models.Address{}, err
		}
		return saved.Address, nil
	}
	if req.Address == nil {
		return models.Address{}, ErrInvalidAddress
	}
	return *req.Address, nil
}

// ListOrders returns the orders of a user, newest first, optionally narrowed to one status.
func (s *OrderService) ListOrders(userID string, status lifecycle.Status) ([]models.OrderView, error) {
	orders, err := s.orderRepo.GetAll(models.OrderFilter{UserID: userID, Status: status})
	if err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(orders, func(o models.Order, _ int) models.OrderView {
		return s.view(o, now, false)
	}), nil
}

// GetOrder returns one order the actor may see.
func (s *OrderService) GetOrder(actor Actor, orderID string) (*models.OrderView, error) {
	order, err := s.owned(actor, orderID)
	if err != nil {
		return nil, err
	}
	view := s.view(*order, s.now(), false)
	return &view, nil
}

// Track returns an order with its stage timeline. The displayed status is
// resolved for the current time and cached.
func (s *OrderService) Track(actor Actor, orderID string) (*models.OrderView, error) {
	order, err := s.owned(actor, orderID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ctx := context.Background()

	if order.Status != lifecycle.StatusCancelled {
		if cached, ok := s.cachedStatus(ctx, orderID); ok {
			order.Status = cached
		} else if delivery, err := lifecycle.ParseDeliveryDate(order.DeliveryDate, s.loc); err == nil {
			order.Status = lifecycle.Resolve(now, order.OrderedTime, delivery, order.Status)
			if err := s.cache.Set(ctx, orderID, order.Status); err != nil {
				s.logger.Warn("Status cache write failed", zap.String("order_id", orderID), zap.Error(err))
			}
		}
	}

	view := s.view(*order, now, true)
	return &view, nil
}

// CancelOrder cancels an order that has not shipped yet.
func (s *OrderService) CancelOrder(actor Actor, orderID string) (*models.OrderView, error) {
	order, err := s.owned(actor, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, ErrNotCancellable)
	}

	prev := order.Status
	if err := s.orderRepo.UpdateStatus(orderID, lifecycle.StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}
	order.Status = lifecycle.StatusCancelled

	if err := s.cache.Invalidate(context.Background(), orderID); err != nil {
		s.logger.Warn("Status cache invalidation failed", zap.String("order_id", orderID), zap.Error(err))
	}
	s.logger.Info("Cancelled order", zap.String("order_id", orderID), zap.String("user_id", order.UserID))
	s.events.Emit(events.OrderCancelled, events.OrderPayload{
		OrderID:    orderID,
		UserID:     order.UserID,
		Status:     lifecycle.StatusCancelled,
		PrevStatus: prev,
	})

	view := s.view(*order, s.now(), false)
	return &view, nil
}

// Reorder adds the items of a past order to the caller's cart. The order itself
// is not touched. Products gone from the catalog are skipped and reported.
func (s *OrderService) Reorder(actor Actor, orderID string) (*models.ReorderResult, error) {
	order, err := s.owned(actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, fmt.Errorf("reorder of order %s for another user: %w", orderID, ErrForbidden)
	}

	skipped := []string{}
	for _, it := range order.Items {
		if _, err := s.productRepo.GetByID(it.ProductID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				skipped = append(skipped, it.Name)
				continue
			}
			return nil, err
		}
		if err := s.cartRepo.Add(actor.UserID, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	cart, err := s.cartRepo.GetByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	return &models.ReorderResult{Cart: cart, Skipped: skipped}, nil
}

func (s *OrderService) cachedStatus(ctx context.Context, orderID string) (lifecycle.Status, bool) {
	status, ok, err := s.cache.Get(ctx, orderID)
	if err != nil {
		s.logger.Warn("Status cache read failed", zap.String("order_id", orderID), zap.Error(err))
		return "", false
	}
	return status, ok
}

func (s *OrderService) owned(actor Actor, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(order) {
		// not revealing that the order exists
		return nil, fmt.Errorf("order with ID %s: %w", orderID, repositories.ErrNotFound)
	}
	return order, nil
}

// view decorates an order with countdown and stage data. An unreadable
// delivery date leaves the derived fields empty.
func (s *OrderService) view(o models.Order, now time.Time, withTimeline bool) models.OrderView {
	v := models.OrderView{Order: o, StageIndex: o.Status.StageIndex()}
	delivery, err := lifecycle.ParseDeliveryDate(o.DeliveryDate, s.loc)
	if err != nil {
		s.logger.Warn("Order has an unreadable delivery date", zap.String("order_id", o.ID), zap.Error(err))
		return v
	}
	v.Countdown = lifecycle.Countdown(now, delivery, o.Status)
	if withTimeline {
		v.Timeline = lifecycle.StageTimestamps(o.OrderedTime, delivery)
	}
	return v
}
