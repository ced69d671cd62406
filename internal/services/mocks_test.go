package services_test

import (
	"context"

	"storefront/internal/lifecycle"
	"storefront/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateOrders(userID string, orders []models.Order) error {
	args := m.Called(userID, orders)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Search(filter models.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(id string, by int) (*models.Product, error) {
	args := m.Called(id, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll(filter models.OrderFilter) ([]models.Order, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) Place(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status lifecycle.Status) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUser(userID string) ([]models.CartItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Add(userID, productID string, qty int) error {
	args := m.Called(userID, productID, qty)
	return args.Error(0)
}

func (m *MockCartRepository) SetQuantity(userID, productID string, qty int) error {
	args := m.Called(userID, productID, qty)
	return args.Error(0)
}

func (m *MockCartRepository) Remove(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockWishlistRepository is a mock implementation of repositories.WishlistRepository
type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) GetByUser(userID string) ([]models.WishlistItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Add(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockWishlistRepository) Remove(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

// MockStatusCache is a mock implementation of cache.StatusCache
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Get(ctx context.Context, orderID string) (lifecycle.Status, bool, error) {
	args := m.Called(orderID)
	return args.Get(0).(lifecycle.Status), args.Bool(1), args.Error(2)
}

func (m *MockStatusCache) Set(ctx context.Context, orderID string, status lifecycle.Status) error {
	args := m.Called(orderID, status)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, orderID string) error {
	args := m.Called(orderID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey, key string, body []byte) error {
	args := m.Called(routingKey, key, body)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) ListByUser(userID string) ([]models.SavedAddress, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedAddress), args.Error(1)
}

func (m *MockAddressRepository) GetByID(userID, id string) (*models.SavedAddress, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedAddress), args.Error(1)
}

func (m *MockAddressRepository) Create(address *models.SavedAddress) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(userID, id string) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

func (m *MockAddressRepository) ReplaceAll(userID string, addresses []models.SavedAddress) error {
	args := m.Called(userID, addresses)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of repositories.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) ListByUser(userID string) ([]models.SavedCard, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedCard), args.Error(1)
}

func (m *MockCardRepository) Create(card *models.SavedCard) error {
	args := m.Called(card)
	return args.Error(0)
}

func (m *MockCardRepository) Update(card *models.SavedCard) error {
	args := m.Called(card)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(userID, id string) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

func (m *MockCardRepository) ReplaceAll(userID string, cards []models.SavedCard) error {
	args := m.Called(userID, cards)
	return args.Error(0)
}
