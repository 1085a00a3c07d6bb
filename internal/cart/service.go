package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/internal/promotions"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/kv"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Service exposes cart state operations. Every mutation persists the
// resulting state before returning, so the store is always the source
// of truth and a crashed request never leaves the cart half-updated in
// memory only.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	AddLine(ctx context.Context, userID uuid.UUID, line Line) (*Snapshot, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*Snapshot, error)
	RemoveLine(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	ApplyDiscount(ctx context.Context, userID uuid.UUID, discount AppliedDiscount) (*Snapshot, error)
	RemoveDiscount(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
}

type service struct {
	store kv.Store
	logg  *logger.Logger
	ttl   time.Duration
}

// NewService builds a cart service backed by the provided key-value
// store. A zero ttl keeps cart state until it is cleared.
func NewService(store kv.Store, logg *logger.Logger, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, logg: logg, ttl: ttl}, nil
}

// Get loads the cart and recomputes its totals. Missing or corrupt
// state degrades to an empty cart rather than failing the request.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	lines, discount, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(lines, discount), nil
}

// AddLine merges the given line into the cart. If the product is
// already present its quantity is increased, otherwise the line is
// appended. A non-positive added quantity leaves the cart untouched.
func (s *service) AddLine(ctx context.Context, userID uuid.UUID, line Line) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if line.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !line.ProductType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product type")
	}
	if line.UnitPrice.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}

	lines, discount, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if line.Quantity <= 0 {
		return buildSnapshot(lines, discount), nil
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}
	return s.persist(ctx, userID, lines, discount)
}

// SetQuantity replaces the quantity of an existing line. A line cannot
// be driven to zero this way; removal is an explicit operation.
func (s *service) SetQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	lines, discount, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return s.persist(ctx, userID, lines, discount)
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
}

// RemoveLine drops the line for the given product. Removing a product
// that is not in the cart is a no-op.
func (s *service) RemoveLine(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	lines, discount, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	return s.persist(ctx, userID, kept, discount)
}

// Clear deletes the cart outright: lines, discount and the cached
// total.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.store.Del(ctx, linesKey(userID), discountKey(userID), totalKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// ApplyDiscount attaches a promotion snapshot to the cart. Applying
// the same promotion again is idempotent; applying a different one
// replaces the previous.
func (s *service) ApplyDiscount(ctx context.Context, userID uuid.UUID, discount AppliedDiscount) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if discount.PromotionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id is required")
	}
	if !discount.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}

	lines, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, lines, &discount)
}

// RemoveDiscount detaches the promotion from the cart, if any.
func (s *service) RemoveDiscount(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	lines, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Del(ctx, discountKey(userID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove discount")
	}
	return s.persist(ctx, userID, lines, nil)
}

func (s *service) load(ctx context.Context, userID uuid.UUID) ([]Line, *AppliedDiscount, error) {
	var lines []Line
	raw, err := s.store.Get(ctx, linesKey(userID))
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	default:
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", linesKey(userID)), "discarding unreadable cart state")
			lines = nil
		}
	}

	var discount *AppliedDiscount
	raw, err = s.store.Get(ctx, discountKey(userID))
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart discount")
	default:
		discount = &AppliedDiscount{}
		if err := json.Unmarshal([]byte(raw), discount); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", discountKey(userID)), "discarding unreadable cart discount")
			discount = nil
		}
	}

	return lines, discount, nil
}

func (s *service) persist(ctx context.Context, userID uuid.UUID, lines []Line, discount *AppliedDiscount) (*Snapshot, error) {
	snapshot := buildSnapshot(lines, discount)

	payload, err := json.Marshal(snapshot.Lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart lines")
	}
	if err := s.store.Set(ctx, linesKey(userID), string(payload), s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart lines")
	}

	if discount != nil {
		payload, err = json.Marshal(discount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart discount")
		}
		if err := s.store.Set(ctx, discountKey(userID), string(payload), s.ttl); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart discount")
		}
	}

	// The total is derived state; it is cached alongside the cart so
	// other tooling can read it cheaply, but it is never read back as
	// truth.
	if err := s.store.Set(ctx, totalKey(userID), snapshot.Total.String(), s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart total")
	}

	return snapshot, nil
}

func buildSnapshot(lines []Line, discount *AppliedDiscount) *Snapshot {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	amount := decimal.Zero
	if discount != nil {
		amount = promotions.ComputeDiscount(discount.DiscountType, discount.Value, subtotal)
	}

	return &Snapshot{
		Lines:          lines,
		Discount:       discount,
		Subtotal:       subtotal,
		DiscountAmount: amount,
		Total:          subtotal.Sub(amount),
	}
}
