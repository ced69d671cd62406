package services

import (
	"context"
	"time"

	"storefront/internal/cache"
	"storefront/internal/events"
	"storefront/internal/lifecycle"
	"storefront/internal/models"

	"go.uber.org/zap"
)

// DefaultSweepInterval is how often order statuses are recomputed.
const DefaultSweepInterval = 5 * time.Minute

// UserOrderStore is the persistence the sweep needs: every user with embedded
// orders, and a write-back of one user's order list. Both the GORM and the
// REST user repositories satisfy it.
type UserOrderStore interface {
	GetAll() ([]models.User, error)
	UpdateOrders(userID string, orders []models.Order) error
}

// SweepResult counts what one sweep run did.
type SweepResult struct {
	Users        int `json:"users"`
	Orders       int `json:"orders"`
	Changed      int `json:"changed"`
	UsersWritten int `json:"usersWritten"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
}

// SweeperDeps collects the optional collaborators of StatusSweeper.
type SweeperDeps struct {
	Cache    cache.StatusCache
	Events   *events.Emitter
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// StatusSweeper periodically advances the status of every order.
//
// It takes no locks: a user action landing between the read and the write of a
// run can be overwritten, and the later write wins.
type StatusSweeper struct {
	store  UserOrderStore
	cache  cache.StatusCache
	events *events.Emitter
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewStatusSweeper creates a StatusSweeper over store.
func NewStatusSweeper(store UserOrderStore, d SweeperDeps) *StatusSweeper {
	s := &StatusSweeper{
		store:  store,
		cache:  d.Cache,
		events: d.Events,
		loc:    d.Location,
		now:    d.Now,
		logger: d.Logger,
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

type statusChange struct {
	order models.Order
	prev  lifecycle.Status
}

// RunOnce recomputes every non-cancelled order as of now and writes back the
// order list of each user with at least one change. Errors are logged and
// counted, never returned.
func (s *StatusSweeper) RunOnce(now time.Time) SweepResult {
	var res SweepResult

	users, err := s.store.GetAll()
	if err != nil {
		s.logger.Error("Sweep could not load users", zap.Error(err))
		res.Failed++
		return res
	}
	res.Users = len(users)

	for _, u := range users {
		orders := make([]models.Order, len(u.Orders))
		copy(orders, u.Orders)

		var changes []statusChange
		for i, o := range orders {
			res.Orders++
			if o.Status == lifecycle.StatusCancelled {
				continue
			}
			delivery, err := lifecycle.ParseDeliveryDate(o.DeliveryDate, s.loc)
			if err != nil || o.OrderedTime.IsZero() {
				s.logger.Warn("Sweep skipped order with unreadable dates",
					zap.String("order_id", o.ID),
					zap.String("user_id", u.ID),
					zap.String("delivery_date", o.DeliveryDate),
					zap.Error(err))
				res.Skipped++
				continue
			}

			next := lifecycle.Resolve(now, o.OrderedTime, delivery, o.Status)
			if next == o.Status {
				continue
			}
			orders[i].Status = next
			changes = append(changes, statusChange{order: orders[i], prev: o.Status})
		}

		if len(changes) == 0 {
			continue
		}
		if err := s.store.UpdateOrders(u.ID, orders); err != nil {
			s.logger.Error("Sweep could not write back orders",
				zap.String("user_id", u.ID),
				zap.Int("changed", len(changes)),
				zap.Error(err))
			res.Failed++
			continue
		}
		res.UsersWritten++
		res.Changed += len(changes)
		s.announce(u.ID, changes)
	}

	s.logger.Info("Order status sweep finished",
		zap.Int("users", res.Users),
		zap.Int("orders", res.Orders),
		zap.Int("changed", res.Changed),
		zap.Int("users_written", res.UsersWritten),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res
}

func (s *StatusSweeper) announce(userID string, changes []statusChange) {
	for _, c := range changes {
		if err := s.cache.Invalidate(context.Background(), c.order.ID); err != nil {
			s.logger.Warn("Status cache invalidation failed", zap.String("order_id", c.order.ID), zap.Error(err))
		}
		s.events.Emit(events.OrderStatusChanged, events.OrderPayload{
			OrderID:    c.order.ID,
			UserID:     userID,
			Status:     c.order.Status,
			PrevStatus: c.prev,
		})
	}
}

// Sweep runs one pass as of the current time.
func (s *StatusSweeper) Sweep() SweepResult {
	return s.RunOnce(s.now())
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *StatusSweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s.logger.Info("Order status sweeper started", zap.Duration("interval", interval))

	s.Sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Order status sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
