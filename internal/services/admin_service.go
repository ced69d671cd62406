package services

import (
	"sort"
	"time"

	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const recentOrdersOnDashboard = 5

// Dashboard summarises the store for the back-office.
type Dashboard struct {
	Customers    int                      `json:"customers"`
	Products     int64                    `json:"products"`
	Orders       int                      `json:"orders"`
	Revenue      decimal.Decimal          `json:"revenue"`
	StatusCounts map[lifecycle.Status]int `json:"statusCounts"`
	RecentOrders []models.Order           `json:"recentOrders"`
}

// CustomerSummary is one row of the back-office customer list.
type CustomerSummary struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	OrderCount  int             `json:"orderCount"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	LastOrderAt *time.Time      `json:"lastOrderAt,omitempty"`
	JoinedAt    time.Time       `json:"joinedAt"`
}

// AdminService backs the admin dashboard, order and customer views.
type AdminService struct {
	userRepo    repositories.UserRepository
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repositories.UserRepository, orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository) *AdminService {
	return &AdminService{userRepo: userRepo, orderRepo: orderRepo, productRepo: productRepo}
}

// Dashboard computes the headline numbers of the store.
func (s *AdminService) Dashboard() (*Dashboard, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.GetAll(models.OrderFilter{})
	if err != nil {
		return nil, err
	}

	statusCounts := lo.CountValuesBy(orders, func(o models.Order) lifecycle.Status { return o.Status })
	for _, st := range append([]lifecycle.Status{lifecycle.StatusCancelled}, lifecycle.Stages...) {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	return &Dashboard{
		Customers:    lo.CountBy(users, func(u models.User) bool { return !u.IsAdmin() }),
		Products:     products,
		Orders:       len(orders),
		Revenue:      revenue(orders),
		StatusCounts: statusCounts,
		RecentOrders: lo.Slice(orders, 0, recentOrdersOnDashboard),
	}, nil
}

// Orders lists orders across all users, newest first.
func (s *AdminService) Orders(filter models.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.GetAll(filter)
}

// Customers lists every non-admin user with order totals, biggest spenders first.
func (s *AdminService) Customers() ([]CustomerSummary, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}

	customers := lo.FilterMap(users, func(u models.User, _ int) (CustomerSummary, bool) {
		if u.IsAdmin() {
			return CustomerSummary{}, false
		}
		sum := CustomerSummary{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			OrderCount: len(u.Orders),
			TotalSpent: revenue(u.Orders),
			JoinedAt:   u.CreatedAt,
		}
		if len(u.Orders) > 0 {
			last := lo.MaxBy(u.Orders, func(a, b models.Order) bool { return a.OrderedTime.After(b.OrderedTime) }).OrderedTime
			sum.LastOrderAt = &last
		}
		return sum, true
	})

	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].TotalSpent.GreaterThan(customers[j].TotalSpent)
	})
	return customers, nil
}

// revenue sums the totals of orders that were not cancelled.
func revenue(orders []models.Order) decimal.Decimal {
	return lo.Reduce(orders, func(acc decimal.Decimal, o models.Order, _ int) decimal.Decimal {
		if o.Status == lifecycle.StatusCancelled {
			return acc
		}
		return acc.Add(o.Total)
	}, decimal.Zero)
}
