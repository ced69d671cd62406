package repositories

import "storefront/internal/models"

// AddressRepository defines the interface for the address book.
type AddressRepository interface {
	ListByUser(userID string) ([]models.SavedAddress, error)
	GetByID(userID, id string) (*models.SavedAddress, error)
	Create(address *models.SavedAddress) error
	Delete(userID, id string) error
	ReplaceAll(userID string, addresses []models.SavedAddress) error
}

// CardRepository defines the interface for saved payment cards.
type CardRepository interface {
	ListByUser(userID string) ([]models.SavedCard, error)
	Create(card *models.SavedCard) error
	Update(card *models.SavedCard) error
	Delete(userID, id string) error
	ReplaceAll(userID string, cards []models.SavedCard) error
}
