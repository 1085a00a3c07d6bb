package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/kv"
	"github.com/shopspring/decimal"
)

// Draft is a checkout snapshot frozen at gateway hand-off time. The
// order is created from the draft, not from the live cart, so cart
// edits made while the shopper is at the gateway cannot change what
// they pay for.
type Draft struct {
	UserID            uuid.UUID           `json:"userId"`
	Lines             []cart.Line         `json:"lines"`
	ShippingAddressID string              `json:"shippingAddressId"`
	PaymentMethod     enums.PaymentMethod `json:"paymentMethod"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	DiscountAmount    decimal.Decimal     `json:"discountAmount"`
	Total             decimal.Decimal     `json:"total"`
	PromotionID       string              `json:"promotionId,omitempty"`
	StagedAt          time.Time           `json:"stagedAt"`
}

// stagingEnvelope wraps the staged draft. Consuming a draft keeps the
// envelope around with the draft stripped, so a replayed callback can
// be told apart from a slot that never existed.
type stagingEnvelope struct {
	Consumed   bool       `json:"consumed"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	OrderID    string     `json:"orderId,omitempty"`
	Draft      *Draft     `json:"draft,omitempty"`
}

// ErrNoDraft signals that nothing is staged for the user.
var ErrNoDraft = errors.New("no staged checkout draft")

// ErrDraftConsumed signals that the staged draft was already turned
// into an order.
var ErrDraftConsumed = errors.New("staged checkout draft already consumed")

// StagingStore holds at most one pending checkout draft per user.
type StagingStore struct {
	store       kv.Store
	stagingTTL  time.Duration
	consumedTTL time.Duration
}

// NewStagingStore builds the staging slot repository.
func NewStagingStore(store kv.Store, cfg config.CheckoutConfig) (*StagingStore, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &StagingStore{
		store:       store,
		stagingTTL:  cfg.StagingTTL,
		consumedTTL: cfg.ConsumedTTL,
	}, nil
}

func stagingKey(userID uuid.UUID) string {
	return fmt.Sprintf("checkout:%s:staged", userID)
}

func consumeLockKey(userID uuid.UUID) string {
	return fmt.Sprintf("checkout:%s:consume", userID)
}

// Put stages a draft, replacing whatever the slot held before.
func (s *StagingStore) Put(ctx context.Context, draft Draft) error {
	if draft.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft user id is required")
	}
	payload, err := json.Marshal(stagingEnvelope{Draft: &draft})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode staged draft")
	}
	if err := s.store.Set(ctx, stagingKey(draft.UserID), string(payload), s.stagingTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage checkout draft")
	}
	// A fresh draft starts a fresh consumption claim; a leftover claim
	// from the previous checkout must not swallow its callback.
	if err := s.store.Del(ctx, consumeLockKey(draft.UserID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset staged draft claim")
	}
	return nil
}

// Get returns the staged draft. ErrNoDraft means the slot is empty or
// expired; ErrDraftConsumed means the draft was already turned into an
// order.
func (s *StagingStore) Get(ctx context.Context, userID uuid.UUID) (*Draft, error) {
	envelope, err := s.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if envelope.Consumed || envelope.Draft == nil {
		return nil, ErrDraftConsumed
	}
	return envelope.Draft, nil
}

// ConsumedOrder returns the order id recorded by a consumed marker.
// It reports ErrNoDraft when the slot is empty and an empty order id
// when the slot still holds an unconsumed draft.
func (s *StagingStore) ConsumedOrder(ctx context.Context, userID uuid.UUID) (string, error) {
	envelope, err := s.read(ctx, userID)
	if err != nil {
		return "", err
	}
	if !envelope.Consumed {
		return "", nil
	}
	return envelope.OrderID, nil
}

// BeginConsume claims the right to turn the staged draft into an
// order. It reports false when another reconciliation already claimed
// it, which is how concurrent gateway callbacks are collapsed to a
// single order.
func (s *StagingStore) BeginConsume(ctx context.Context, userID uuid.UUID) (bool, error) {
	first, err := s.store.SetNX(ctx, consumeLockKey(userID), "1", s.consumedTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim staged draft")
	}
	return first, nil
}

// ReleaseConsume gives the claim back, used when order creation failed
// and a later callback should be allowed to try again.
func (s *StagingStore) ReleaseConsume(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Del(ctx, consumeLockKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release staged draft claim")
	}
	return nil
}

// MarkConsumed replaces the draft with a consumed marker recording the
// order it produced. The marker outlives the draft long enough to
// absorb duplicate gateway callbacks.
func (s *StagingStore) MarkConsumed(ctx context.Context, userID uuid.UUID, orderID string) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(stagingEnvelope{
		Consumed:   true,
		ConsumedAt: &now,
		OrderID:    orderID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode consumed marker")
	}
	if err := s.store.Set(ctx, stagingKey(userID), string(payload), s.consumedTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark draft consumed")
	}
	return nil
}

// Discard drops the slot entirely, draft or marker alike, along with
// any consume claim.
func (s *StagingStore) Discard(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Del(ctx, stagingKey(userID), consumeLockKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard staged draft")
	}
	return nil
}

func (s *StagingStore) read(ctx context.Context, userID uuid.UUID) (*stagingEnvelope, error) {
	raw, err := s.store.Get(ctx, stagingKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staged draft")
	}
	envelope := &stagingEnvelope{}
	if err := json.Unmarshal([]byte(raw), envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode staged draft")
	}
	return envelope, nil
}
