package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UpdateProfileRequest changes the account details of a user. A nil
// Addresses or Cards list keeps what is stored; any other value, including
// an empty list, replaces it.
type UpdateProfileRequest struct {
	FirstName string           `json:"firstName" validate:"omitempty,alphaspace,max=100"`
	LastName  string           `json:"lastName" validate:"omitempty,alphaspace,max=100"`
	Email     string           `json:"email" validate:"required,email"`
	Phone     string           `json:"phone" validate:"omitempty,numeric,len=10"`
	Password  string           `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Addresses []models.Address `json:"addresses" validate:"dive"`
	Cards     []CardRequest    `json:"cards" validate:"dive"`
}

// ProfileService manages account details, the address book and saved cards.
type ProfileService struct {
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
	cardRepo    repositories.CardRepository
	logger      *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users repositories.UserRepository, addresses repositories.AddressRepository, cards repositories.CardRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		userRepo:    users,
		addressRepo: addresses,
		cardRepo:    cards,
		logger:      logger,
	}
}

// GetProfile returns the account details of a user with their addresses and cards.
func (s *ProfileService) GetProfile(userID string) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Addresses: addresses,
		Cards:     cards,
	}, nil
}

// UpdateProfile writes the account details of a user. Every card is checked
// before anything is written.
func (s *ProfileService) UpdateProfile(userID string, req UpdateProfileRequest) (*models.Profile, error) {
	taken, err := emailTaken(s.userRepo, req.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email '%s' already registered: %w", req.Email, ErrAlreadyExists)
	}

	var cards []models.SavedCard
	if req.Cards != nil {
		cards = make([]models.SavedCard, 0, len(req.Cards))
		for _, c := range req.Cards {
			card, err := BuildSavedCard(c)
			if err != nil {
				return nil, err
			}
			cards = append(cards, card)
		}
	}

	user := &models.User{
		ID:        userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if err := s.userRepo.UpdateProfile(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s' already registered: %w", req.Email, ErrAlreadyExists)
		}
		return nil, err
	}

	if req.Addresses != nil {
		saved := lo.Map(req.Addresses, func(a models.Address, _ int) models.SavedAddress {
			return models.SavedAddress{Address: a}
		})
		if err := s.addressRepo.ReplaceAll(userID, saved); err != nil {
			return nil, err
		}
	}
	if req.Cards != nil {
		if err := s.cardRepo.ReplaceAll(userID, cards); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Updated profile", zap.String("user_id", userID), zap.Bool("password_changed", req.Password != ""))
	return s.GetProfile(userID)
}

// Addresses returns the address book of a user.
func (s *ProfileService) Addresses(userID string) ([]models.SavedAddress, error) {
	return s.addressRepo.ListByUser(userID)
}

// AddAddress saves an address to the book of an existing user.
func (s *ProfileService) AddAddress(userID string, address models.Address) (*models.SavedAddress, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	saved := &models.SavedAddress{UserID: userID, Address: address}
	if err := s.addressRepo.Create(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteAddress removes an address from the book.
func (s *ProfileService) DeleteAddress(userID, addressID string) error {
	return s.addressRepo.Delete(userID, addressID)
}

// Cards returns the saved cards of a user.
func (s *ProfileService) Cards(userID string) ([]models.SavedCard, error) {
	return s.cardRepo.ListByUser(userID)
}

// SaveCard keeps a card on file and returns every saved card.
func (s *ProfileService) SaveCard(userID string, req CardRequest) ([]models.SavedCard, error) {
	card, err := BuildSavedCard(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	card.UserID = userID
	if err := s.cardRepo.Create(&card); err != nil {
		return nil, err
	}
	s.logger.Info("Saved card", zap.String("user_id", userID), zap.String("card_id", card.ID), zap.String("card", card.CardMasked))
	return s.cardRepo.ListByUser(userID)
}

// UpdateCard replaces the details of a saved card and returns every saved card.
func (s *ProfileService) UpdateCard(userID, cardID string, req CardRequest) ([]models.SavedCard, error) {
	card, err := BuildSavedCard(req)
	if err != nil {
		return nil, err
	}
	card.ID = cardID
	card.UserID = userID
	if err := s.cardRepo.Update(&card); err != nil {
		return nil, err
	}
	return s.cardRepo.ListByUser(userID)
}

// DeleteCard removes a saved card and returns the remaining ones.
func (s *ProfileService) DeleteCard(userID, cardID string) ([]models.SavedCard, error) {
	if err := s.cardRepo.Delete(userID, cardID); err != nil {
		return nil, err
	}
	return s.cardRepo.ListByUser(userID)
}

// emailTaken reports whether email belongs to a user other than excludeID.
func emailTaken(users repositories.UserRepository, email, excludeID string) (bool, error) {
	u, err := users.GetByEmail(email)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID != excludeID, nil
}
