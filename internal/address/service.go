package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/types"
)

type addressLister interface {
	ListAddresses(ctx context.Context, userID string) ([]types.ShippingAddress, error)
}

// Service exposes the shopper's saved shipping addresses. Address CRUD
// lives with the store service; this side only reads and verifies.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]types.ShippingAddress, error)
	BelongsToUser(ctx context.Context, userID uuid.UUID, addressID string) (bool, error)
}

type service struct {
	store addressLister
}

// NewService builds an address lookup service.
func NewService(store addressLister) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("address lister required")
	}
	return &service{store: store}, nil
}

// List returns the shopper's saved addresses.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]types.ShippingAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	addresses, err := s.store.ListAddresses(ctx, userID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

// BelongsToUser reports whether the address id is one of the shopper's
// saved addresses. Checkout uses it to refuse drafts pointed at
// someone else's address.
func (s *service) BelongsToUser(ctx context.Context, userID uuid.UUID, addressID string) (bool, error) {
	if addressID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	addresses, err := s.List(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, addr := range addresses {
		if addr.ID == addressID {
			return true, nil
		}
	}
	return false, nil
}
