package promotions

import (
	"context"
	"fmt"

	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/storeapi"
)

type promotionLister interface {
	ListPromotions(ctx context.Context) ([]storeapi.Promotion, error)
}

// Service exposes the promotions available to shoppers.
type Service interface {
	List(ctx context.Context) ([]storeapi.Promotion, error)
	Find(ctx context.Context, promotionID string) (*storeapi.Promotion, error)
}

type service struct {
	store promotionLister
}

// NewService builds a promotions service backed by the store catalog.
func NewService(store promotionLister) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("promotion lister required")
	}
	return &service{store: store}, nil
}

// List returns every promotion the catalog currently advertises.
func (s *service) List(ctx context.Context) ([]storeapi.Promotion, error) {
	promos, err := s.store.ListPromotions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	return promos, nil
}

// Find resolves a single promotion by id.
func (s *service) Find(ctx context.Context, promotionID string) (*storeapi.Promotion, error) {
	if promotionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id is required")
	}
	promos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range promos {
		if promos[i].ID == promotionID {
			return &promos[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
}
