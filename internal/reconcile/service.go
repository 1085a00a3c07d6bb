package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/internal/checkout"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/metrics"
	"github.com/kickzhub/storefront-backend/pkg/orderapi"
	"github.com/kickzhub/storefront-backend/pkg/vnpay"
	"go.uber.org/multierr"
)

type cartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, input orderapi.CreateOrderInput) (*orderapi.Order, error)
}

type stagingSlot interface {
	Get(ctx context.Context, userID uuid.UUID) (*checkout.Draft, error)
	ConsumedOrder(ctx context.Context, userID uuid.UUID) (string, error)
	BeginConsume(ctx context.Context, userID uuid.UUID) (bool, error)
	ReleaseConsume(ctx context.Context, userID uuid.UUID) error
	MarkConsumed(ctx context.Context, userID uuid.UUID, orderID string) error
	Discard(ctx context.Context, userID uuid.UUID) error
}

// Result is the outcome of a committed reconciliation. Replayed is set
// when the callback arrived for a draft that was already turned into
// an order; no second order is created in that case.
type Result struct {
	OrderID  string
	Replayed bool
}

// Service settles gateway payment callbacks against the staged
// checkout draft. A callback is processed at most once per draft; the
// gateway may deliver it any number of times.
type Service interface {
	Reconcile(ctx context.Context, userID uuid.UUID, callback vnpay.Callback) (*Result, error)
}

type service struct {
	carts            cartClearer
	orders           orderCreator
	staging          stagingSlot
	logg             *logger.Logger
	checkoutMetrics  *metrics.CheckoutMetrics
	orderDescription string
}

// NewService builds the payment reconciler.
func NewService(
	carts cartClearer,
	orders orderCreator,
	staging stagingSlot,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
	orderDescription string,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if staging == nil {
		return nil, fmt.Errorf("staging slot required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:            carts,
		orders:           orders,
		staging:          staging,
		logg:             logg,
		checkoutMetrics:  checkoutMetrics,
		orderDescription: orderDescription,
	}, nil
}

// Reconcile settles one gateway callback.
//
// On success it creates the order from the staged draft, clears the
// cart and leaves a consumed marker behind. A callback for an already
// consumed draft is acknowledged without creating anything. A success
// callback with no staged draft at all is an integrity failure. A
// failure callback discards the draft and leaves the cart untouched so
// the shopper can try again.
func (s *service) Reconcile(ctx context.Context, userID uuid.UUID, callback vnpay.Callback) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ctx = s.logg.WithTxnRef(ctx, callback.TxnRef)

	if !callback.Succeeded() {
		return nil, s.settleFailure(ctx, userID, callback)
	}

	draft, err := s.staging.Get(ctx, userID)
	switch {
	case errors.Is(err, checkout.ErrDraftConsumed):
		return s.settleReplay(ctx, userID)
	case errors.Is(err, checkout.ErrNoDraft):
		s.checkoutMetrics.IncPaymentOutcome("orphaned")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment succeeded but no staged checkout was found")
	case err != nil:
		return nil, err
	}

	first, err := s.staging.BeginConsume(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !first {
		return s.settleReplay(ctx, userID)
	}

	order, err := s.orders.CreateOrder(ctx, orderapi.CreateOrderInput{
		UserID:            draft.UserID.String(),
		Items:             orderItems(draft.Lines),
		ShippingAddressID: draft.ShippingAddressID,
		PaymentMethod:     enums.PaymentMethodGateway,
		TotalAmount:       draft.Total,
		Status:            enums.OrderStatusPending,
		Description:       s.orderDescription,
	})
	if err != nil {
		// Give the claim back so the gateway's next delivery can retry
		// the order; the draft itself is still staged.
		if releaseErr := s.staging.ReleaseConsume(ctx, userID); releaseErr != nil {
			s.logg.Error(ctx, "failed to release consume claim", releaseErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order from staged draft")
	}
	s.checkoutMetrics.IncOrderCreated(enums.PaymentMethodGateway.String())
	s.checkoutMetrics.IncPaymentOutcome("committed")

	// The order exists from here on. Cleanup failures are logged, not
	// surfaced, because surfacing them would report a placed order as
	// failed.
	cleanupErr := multierr.Combine(
		s.staging.MarkConsumed(ctx, userID, order.OrderID),
		s.carts.Clear(ctx, userID),
	)
	if cleanupErr != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.OrderID), "post-order cleanup incomplete", cleanupErr)
	}

	return &Result{OrderID: order.OrderID}, nil
}

func (s *service) settleReplay(ctx context.Context, userID uuid.UUID) (*Result, error) {
	s.checkoutMetrics.IncReplayedCallback()
	orderID, err := s.staging.ConsumedOrder(ctx, userID)
	if err != nil && !errors.Is(err, checkout.ErrNoDraft) {
		s.logg.Error(ctx, "failed to read consumed marker", err)
	}
	s.logg.Info(ctx, "replayed gateway callback acknowledged")
	return &Result{OrderID: orderID, Replayed: true}, nil
}

func (s *service) settleFailure(ctx context.Context, userID uuid.UUID, callback vnpay.Callback) error {
	s.checkoutMetrics.IncPaymentOutcome("failed")
	if err := s.staging.Discard(ctx, userID); err != nil {
		s.logg.Error(ctx, "failed to discard staged draft after payment failure", err)
	}
	return pkgerrors.New(pkgerrors.CodePaymentFailed, "payment was not completed").WithDetails(map[string]string{
		"responseCode":      callback.ResponseCode,
		"transactionStatus": callback.TransactionStatus,
	})
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
