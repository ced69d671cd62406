package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type profileFixture struct {
	users     *MockUserRepository
	addresses *MockAddressRepository
	cards     *MockCardRepository
	service   *services.ProfileService
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		users:     new(MockUserRepository),
		addresses: new(MockAddressRepository),
		cards:     new(MockCardRepository),
	}
	f.service = services.NewProfileService(f.users, f.addresses, f.cards, nil)
	return f
}

var puneAddress = models.Address{Name: "Asha Rao", Phone: "9876543210", Line: "12 MG Road", City: "Pune", Pincode: "411001"}

func TestProfileService_GetProfile(t *testing.T) {
	f := newProfileFixture()
	f.users.On("GetByID", "u-1").Return(&models.User{ID: "u-1", Username: "asha", Email: "asha@example.com", Password: "hash", Role: models.RoleCustomer}, nil)
	f.addresses.On("ListByUser", "u-1").Return([]models.SavedAddress{{ID: "a-1", Address: puneAddress}}, nil)
	f.cards.On("ListByUser", "u-1").Return([]models.SavedCard{{ID: "c-1", CardLast4: "4242"}}, nil)

	profile, err := f.service.GetProfile("u-1")
	require.NoError(t, err)
	assert.Equal(t, "asha", profile.Username)
	assert.Equal(t, models.RoleCustomer, profile.Role)
	assert.Len(t, profile.Addresses, 1)
	assert.Len(t, profile.Cards, 1)

	f.users.On("GetByID", "missing").Return(nil, repositories.ErrNotFound)
	_, err = f.service.GetProfile("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	f := newProfileFixture()
	f.users.On("GetByEmail", "asha.rao@example.com").Return(nil, repositories.ErrNotFound)
	var written *models.User
	f.users.On("UpdateProfile", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { written = args.Get(0).(*models.User) }).
		Return(nil).Once()
	f.addresses.On("ReplaceAll", "u-1", []models.SavedAddress{{Address: puneAddress}}).Return(nil).Once()
	f.users.On("GetByID", "u-1").Return(&models.User{ID: "u-1", Username: "asha", Email: "asha.rao@example.com"}, nil)
	f.addresses.On("ListByUser", "u-1").Return([]models.SavedAddress{{ID: "a-9", Address: puneAddress}}, nil)
	f.cards.On("ListByUser", "u-1").Return([]models.SavedCard{}, nil)

	profile, err := f.service.UpdateProfile("u-1", services.UpdateProfileRequest{
		FirstName: "Asha",
		Email:     "asha.rao@example.com",
		Password:  "newsecret",
		Addresses: []models.Address{puneAddress},
	})
	require.NoError(t, err)
	assert.Equal(t, "asha.rao@example.com", profile.Email)

	require.NotNil(t, written)
	assert.Equal(t, "Asha", written.FirstName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(written.Password), []byte("newsecret")))
	f.cards.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
	f.addresses.AssertExpectations(t)
}

func TestProfileService_UpdateProfile_Rejections(t *testing.T) {
	t.Run("email of another user", func(t *testing.T) {
		f := newProfileFixture()
		f.users.On("GetByEmail", "ravi@example.com").Return(&models.User{ID: "u-2"}, nil)

		_, err := f.service.UpdateProfile("u-1", services.UpdateProfileRequest{Email: "ravi@example.com"})
		assert.ErrorIs(t, err, services.ErrAlreadyExists)
		f.users.AssertNotCalled(t, "UpdateProfile", mock.Anything)
	})

	t.Run("bad card writes nothing", func(t *testing.T) {
		f := newProfileFixture()
		f.users.On("GetByEmail", "asha@example.com").Return(&models.User{ID: "u-1"}, nil)

		_, err := f.service.UpdateProfile("u-1", services.UpdateProfileRequest{
			Email: "asha@example.com",
			Cards: []services.CardRequest{
				{CardType: "Visa", CardName: "Asha", CardNumber: "4111111111111111", Expiry: "01/29"},
				{CardType: "Visa", CardName: "Asha", CardNumber: "4111", Expiry: "01/29"},
			},
		})
		assert.ErrorIs(t, err, services.ErrInvalidPayment)
		f.users.AssertNotCalled(t, "UpdateProfile", mock.Anything)
		f.cards.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
	})

	t.Run("email taken by a concurrent update", func(t *testing.T) {
		f := newProfileFixture()
		f.users.On("GetByEmail", "asha@example.com").Return(nil, repositories.ErrNotFound)
		f.users.On("UpdateProfile", mock.Anything).Return(repositories.ErrDuplicate)

		_, err := f.service.UpdateProfile("u-1", services.UpdateProfileRequest{Email: "asha@example.com"})
		assert.ErrorIs(t, err, services.ErrAlreadyExists)
	})
}

func TestProfileService_AddAddress(t *testing.T) {
	f := newProfileFixture()
	f.users.On("GetByID", "u-1").Return(&models.User{ID: "u-1"}, nil)
	f.users.On("GetByID", "missing").Return(nil, repositories.ErrNotFound)
	f.addresses.On("Create", mock.AnythingOfType("*models.SavedAddress")).Return(nil).Once()

	saved, err := f.service.AddAddress("u-1", puneAddress)
	require.NoError(t, err)
	assert.Equal(t, "u-1", saved.UserID)
	assert.Equal(t, puneAddress, saved.Address)

	_, err = f.service.AddAddress("missing", puneAddress)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	f.addresses.AssertNumberOfCalls(t, "Create", 1)
}

func TestProfileService_Cards(t *testing.T) {
	f := newProfileFixture()
	f.users.On("GetByID", "u-1").Return(&models.User{ID: "u-1"}, nil)
	var stored *models.SavedCard
	f.cards.On("Create", mock.AnythingOfType("*models.SavedCard")).
		Run(func(args mock.Arguments) { stored = args.Get(0).(*models.SavedCard) }).
		Return(nil).Once()
	f.cards.On("ListByUser", "u-1").Return([]models.SavedCard{{ID: "c-1", CardLast4: "4242"}}, nil)

	cards, err := f.service.SaveCard("u-1", services.CardRequest{CardType: "Visa", CardName: "Asha", CardNumber: "4111 1111 1111 4242", Expiry: "01/29"})
	require.NoError(t, err)
	assert.Len(t, cards, 1)
	require.NotNil(t, stored)
	assert.Equal(t, "u-1", stored.UserID)
	assert.Equal(t, "**** **** **** 4242", stored.CardMasked)

	_, err = f.service.SaveCard("u-1", services.CardRequest{CardType: "Diners", CardName: "Asha", CardNumber: "1", Expiry: "01/29"})
	assert.ErrorIs(t, err, services.ErrInvalidPayment)
	f.cards.AssertNumberOfCalls(t, "Create", 1)

	f.cards.On("Update", mock.MatchedBy(func(c *models.SavedCard) bool { return c.ID == "nope" })).Return(repositories.ErrNotFound)
	_, err = f.service.UpdateCard("u-1", "nope", services.CardRequest{CardType: "Visa", CardName: "Asha", CardNumber: "4111111111111111", Expiry: "01/29"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	f.cards.On("Delete", "u-1", "c-1").Return(nil).Once()
	_, err = f.service.DeleteCard("u-1", "c-1")
	assert.NoError(t, err)
}
