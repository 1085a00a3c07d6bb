package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/metrics"
	"github.com/kickzhub/storefront-backend/pkg/orderapi"
	"github.com/kickzhub/storefront-backend/pkg/vnpay"
)

type cartAccessor interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, input orderapi.CreateOrderInput) (*orderapi.Order, error)
}

type paymentInitiator interface {
	CreatePayment(ctx context.Context, params vnpay.PaymentInitParams) (*vnpay.PaymentInit, error)
}

// SubmitInput carries the shopper's choices for placing an order.
type SubmitInput struct {
	ShippingAddressID string
	ClientIP          string
}

// Service drives order placement. Cash on delivery creates the order
// immediately; the gateway path stages a draft and hands the shopper
// to the payment provider.
type Service interface {
	PaymentOptions(ctx context.Context, userID uuid.UUID) ([]enums.PaymentMethod, error)
	SubmitCOD(ctx context.Context, userID uuid.UUID, input SubmitInput) (*orderapi.Order, error)
	SubmitGateway(ctx context.Context, userID uuid.UUID, input SubmitInput) (*vnpay.PaymentInit, error)
}

type service struct {
	carts            cartAccessor
	orders           orderCreator
	gateway          paymentInitiator
	staging          *StagingStore
	logg             *logger.Logger
	checkoutMetrics  *metrics.CheckoutMetrics
	orderDescription string
}

// NewService builds a checkout service from its collaborators.
func NewService(
	carts cartAccessor,
	orders orderCreator,
	gateway paymentInitiator,
	staging *StagingStore,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
	orderDescription string,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment initiator required")
	}
	if staging == nil {
		return nil, fmt.Errorf("staging store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:            carts,
		orders:           orders,
		gateway:          gateway,
		staging:          staging,
		logg:             logg,
		checkoutMetrics:  checkoutMetrics,
		orderDescription: orderDescription,
	}, nil
}

// PaymentOptions returns the payment methods the current cart is
// eligible for. Cash on delivery is withheld when any line is a
// digital product, since there is nothing to hand cash over for.
func (s *service) PaymentOptions(ctx context.Context, userID uuid.UUID) ([]enums.PaymentMethod, error) {
	snapshot, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	methods := []enums.PaymentMethod{enums.PaymentMethodGateway}
	if !snapshot.HasDigitalLine() {
		methods = append(methods, enums.PaymentMethodCOD)
	}
	return methods, nil
}

// SubmitCOD creates the order right away and clears the cart. If order
// creation fails the cart is left untouched so the shopper can retry.
func (s *service) SubmitCOD(ctx context.Context, userID uuid.UUID, input SubmitInput) (*orderapi.Order, error) {
	snapshot, err := s.validatedSnapshot(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	if snapshot.HasDigitalLine() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery is not available for digital items")
	}

	order, err := s.orders.CreateOrder(ctx, orderapi.CreateOrderInput{
		UserID:            userID.String(),
		Items:             orderItems(snapshot.Lines),
		ShippingAddressID: input.ShippingAddressID,
		PaymentMethod:     enums.PaymentMethodCOD,
		TotalAmount:       snapshot.Total,
		Status:            enums.OrderStatusPending,
		Description:       s.orderDescription,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	s.checkoutMetrics.IncOrderCreated(enums.PaymentMethodCOD.String())

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order exists; a stale cart is recoverable, a lost order
		// is not.
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.OrderID), "failed to clear cart after order creation", err)
	}
	return order, nil
}

// SubmitGateway freezes the cart into a staged draft and opens a
// payment session with the gateway. The cart itself is not cleared
// until the gateway confirms payment.
func (s *service) SubmitGateway(ctx context.Context, userID uuid.UUID, input SubmitInput) (*vnpay.PaymentInit, error) {
	snapshot, err := s.validatedSnapshot(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	draft := Draft{
		UserID:            userID,
		Lines:             snapshot.Lines,
		ShippingAddressID: input.ShippingAddressID,
		PaymentMethod:     enums.PaymentMethodGateway,
		Subtotal:          snapshot.Subtotal,
		DiscountAmount:    snapshot.DiscountAmount,
		Total:             snapshot.Total,
		StagedAt:          time.Now().UTC(),
	}
	if snapshot.Discount != nil {
		draft.PromotionID = snapshot.Discount.PromotionID
	}
	if err := s.staging.Put(ctx, draft); err != nil {
		return nil, err
	}
	s.checkoutMetrics.IncStagedDraft()

	init, err := s.gateway.CreatePayment(ctx, vnpay.PaymentInitParams{
		Amount:   snapshot.Total,
		ClientIP: input.ClientIP,
	})
	if err != nil {
		// Without a payment session the draft can never be confirmed;
		// drop it so a retry starts clean.
		if discardErr := s.staging.Discard(ctx, userID); discardErr != nil {
			s.logg.Error(ctx, "failed to discard staged draft after gateway error", discardErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initiate gateway payment")
	}
	return init, nil
}

func (s *service) validatedSnapshot(ctx context.Context, userID uuid.UUID, input SubmitInput) (*cart.Snapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ShippingAddressID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	snapshot, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return snapshot, nil
}

func orderItems(lines []cart.Line) []orderapi.OrderItem {
	items := make([]orderapi.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, orderapi.OrderItem{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
		})
	}
	return items
}
