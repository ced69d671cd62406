package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// ListByUser returns the address book of a user, oldest first.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.SavedAddress, error) {
	var addresses []models.SavedAddress
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to get addresses of user %s: %w", userID, err)
	}
	return addresses, nil
}

// GetByID returns one address of a user.
func (r *GORMAddressRepository) GetByID(userID, id string) (*models.SavedAddress, error) {
	var address models.SavedAddress
	if err := r.db.Take(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", id, err)
	}
	return &address, nil
}

// Create adds an address to the book.
func (r *GORMAddressRepository) Create(address *models.SavedAddress) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// Delete removes one address of a user.
func (r *GORMAddressRepository) Delete(userID, id string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedAddress{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceAll swaps the whole address book of a user for addresses.
func (r *GORMAddressRepository) ReplaceAll(userID string, addresses []models.SavedAddress) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.SavedAddress{}).Error; err != nil {
			return err
		}
		if len(addresses) == 0 {
			return nil
		}
		for i := range addresses {
			addresses[i].ID = uuid.New().String()
			addresses[i].UserID = userID
		}
		return tx.Create(&addresses).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace addresses of user %s: %w", userID, err)
	}
	return nil
}

// GORMCardRepository is a GORM implementation of CardRepository.
type GORMCardRepository struct {
	db *gorm.DB
}

// NewGORMCardRepository creates a new instance of GORMCardRepository.
func NewGORMCardRepository(db *gorm.DB) *GORMCardRepository {
	return &GORMCardRepository{db: db}
}

// ListByUser returns the saved cards of a user, oldest first.
func (r *GORMCardRepository) ListByUser(userID string) ([]models.SavedCard, error) {
	var cards []models.SavedCard
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get cards of user %s: %w", userID, err)
	}
	return cards, nil
}

// Create saves a card.
func (r *GORMCardRepository) Create(card *models.SavedCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// Update overwrites the details of a saved card owned by card.UserID.
func (r *GORMCardRepository) Update(card *models.SavedCard) error {
	res := r.db.Model(&models.SavedCard{}).
		Where("id = ? AND user_id = ?", card.ID, card.UserID).
		Updates(map[string]any{
			"card_type":   card.CardType,
			"card_name":   card.CardName,
			"card_masked": card.CardMasked,
			"card_last4":  card.CardLast4,
			"expiry":      card.Expiry,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update card %s: %w", card.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card with ID %s: %w", card.ID, ErrNotFound)
	}
	return nil
}

// Delete removes one saved card of a user.
func (r *GORMCardRepository) Delete(userID, id string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedCard{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceAll swaps every saved card of a user for cards.
func (r *GORMCardRepository) ReplaceAll(userID string, cards []models.SavedCard) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.SavedCard{}).Error; err != nil {
			return err
		}
		if len(cards) == 0 {
			return nil
		}
		for i := range cards {
			cards[i].ID = uuid.New().String()
			cards[i].UserID = userID
		}
		return tx.Create(&cards).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace cards of user %s: %w", userID, err)
	}
	return nil
}
