package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/types"
)

type OrderEntity struct {
	UUID              uuid.UUID           `json:"uuid"`
	Instrument        string              `json:"instrument"`
	Side              types.OrderSide     `json:"side"`
	Kind              types.OrderKind     `json:"kind"`
	TimeInForce       types.TimeInForce   `json:"time_in_force"`
	Price             decimal.NullDecimal `json:"price"`
	AvgPrice          decimal.Decimal     `json:"avg_price"`
	Status            string              `json:"status"`
	StrategyKind      types.StrategyKind  `json:"strategy_kind"`
	Quantity          decimal.Decimal     `json:"quantity"`
	FilledQuantity    decimal.Decimal     `json:"filled_quantity"`
	RemainingQuantity decimal.Decimal     `json:"remaining_quantity"`
	RoutedProviders   []string            `json:"routed_providers"`
	ChildOrderIDs     []string            `json:"child_order_ids"`
	Version           int64               `json:"version"`
	ReceivedAt        time.Time           `json:"received_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
