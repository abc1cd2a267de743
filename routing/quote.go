package routing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

// Quote is one provider's answer for an order's instrument/side/quantity.
// Quotes live for the duration of a single routing decision.
type Quote struct {
	ProviderID        string          `json:"provider_id"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ValidUntil        time.Time       `json:"valid_until"`
}

func (q Quote) Expired(now time.Time) bool {
	return !q.ValidUntil.After(now)
}

// SatisfiesLimit checks the order's limit-price constraint: a buy must not
// pay above the limit, a sell must not give below it.
func (q Quote) SatisfiesLimit(order *models.Order) bool {
	limit, has_limit := order.LimitPrice()
	if !has_limit {
		return true
	}

	if order.Side == types.SideBuy {
		return q.Price.LessThanOrEqual(limit)
	}

	return q.Price.GreaterThanOrEqual(limit)
}

func (q Quote) Valid(order *models.Order, now time.Time) bool {
	return !q.Expired(now) && q.AvailableQuantity.IsPositive() && q.SatisfiesLimit(order)
}

type RoutingDecision struct {
	ProviderID string          `json:"provider_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Rank       int             `json:"rank"`
}

// ChildOrderSpec is what gets dispatched to a provider for one decision.
type ChildOrderSpec struct {
	ClientID     string          `json:"client_id"`
	InstrumentID string          `json:"instrument_id"`
	Side         types.OrderSide `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

type OrderChanges struct {
	Price    decimal.NullDecimal `json:"price"`
	Quantity decimal.NullDecimal `json:"quantity"`
}

// ProviderGateway is the LP connectivity boundary. The wire protocol behind
// it is out of scope here.
type ProviderGateway interface {
	GetQuote(ctx context.Context, provider_id string, instrument string, side types.OrderSide, quantity decimal.Decimal) (*Quote, error)
	SendOrder(ctx context.Context, provider_id string, spec ChildOrderSpec) (string, error)
	CancelOrder(ctx context.Context, provider_id string, provider_order_id string) error
	AmendOrder(ctx context.Context, provider_id string, provider_order_id string, changes OrderChanges) error
}
