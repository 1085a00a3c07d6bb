package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement and payment reconciliation
// outcomes.
type CheckoutMetrics struct {
	ordersCreated    *prometheus.CounterVec
	paymentOutcomes  *prometheus.CounterVec
	replayedCallback prometheus.Counter
	stagedDrafts     prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided
// registerer. A nil registerer yields a no-op instance.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created, labelled by payment method.",
	}, []string{"payment_method"})
	paymentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_payment_outcomes_total",
		Help: "Gateway payment callbacks, labelled by outcome.",
	}, []string{"outcome"})
	replayedCallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_replayed_callbacks_total",
		Help: "Payment callbacks that arrived after the draft was already consumed.",
	})
	stagedDrafts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_staged_drafts_total",
		Help: "Checkout drafts staged ahead of a gateway redirect.",
	})
	reg.MustRegister(ordersCreated, paymentOutcomes, replayedCallback, stagedDrafts)
	return &CheckoutMetrics{
		ordersCreated:    ordersCreated,
		paymentOutcomes:  paymentOutcomes,
		replayedCallback: replayedCallback,
		stagedDrafts:     stagedDrafts,
	}
}

// IncOrderCreated increments the order counter for the payment method.
func (c *CheckoutMetrics) IncOrderCreated(paymentMethod string) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncPaymentOutcome increments the callback counter for the outcome.
func (c *CheckoutMetrics) IncPaymentOutcome(outcome string) {
	if c == nil || c.paymentOutcomes == nil {
		return
	}
	c.paymentOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReplayedCallback increments the replayed callback counter.
func (c *CheckoutMetrics) IncReplayedCallback() {
	if c == nil || c.replayedCallback == nil {
		return
	}
	c.replayedCallback.Inc()
}

// IncStagedDraft increments the staged draft counter.
func (c *CheckoutMetrics) IncStagedDraft() {
	if c == nil || c.stagedDrafts == nil {
		return
	}
	c.stagedDrafts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
