package shopper

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Shopper"

var (
	ErrShopperNotFound    = errors.New("shopper not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Shopper represents a shopper account aggregate
type Shopper struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Service handles shopper domain operations
type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Register creates a new shopper account
func (s *Service) Register(ctx context.Context, email, password, name string) (*Shopper, error) {
	return s.RegisterWithRole(ctx, email, password, name, "shopper")
}

// RegisterAdmin creates a new admin account
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*Shopper, error) {
	return s.RegisterWithRole(ctx, email, password, name, "admin")
}

// RegisterWithRole creates a new shopper with a specific role
func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, role string) (*Shopper, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	shopperID := uuid.New().String()
	now := time.Now()

	event := ShopperRegistered{
		ShopperID:    shopperID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
	}

	_, err = s.eventStore.Append(ctx, shopperID, AggregateType, EventShopperRegistered, event)
	if err != nil {
		return nil, err
	}

	return &Shopper{
		ID:        shopperID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
	}, nil
}

// RecordLogin records a login event
func (s *Service) RecordLogin(ctx context.Context, shopperID, sessionID string) error {
	event := ShopperLoggedIn{
		ShopperID: shopperID,
		SessionID: sessionID,
		LoggedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopperID, AggregateType, EventShopperLoggedIn, event)
	return err
}

// RecordLogout records a logout event
func (s *Service) RecordLogout(ctx context.Context, shopperID, sessionID string) error {
	event := ShopperLoggedOut{
		ShopperID: shopperID,
		SessionID: sessionID,
		LoggedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopperID, AggregateType, EventShopperLoggedOut, event)
	return err
}

// UpdateProfile updates profile details
func (s *Service) UpdateProfile(ctx context.Context, shopperID, name string) error {
	if name == "" {
		return ErrInvalidName
	}

	events := s.eventStore.GetEvents(shopperID)
	if len(events) == 0 {
		return ErrShopperNotFound
	}

	event := ShopperUpdated{
		ShopperID: shopperID,
		Name:      name,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopperID, AggregateType, EventShopperUpdated, event)
	return err
}
