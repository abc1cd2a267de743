package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/entities"
	"github.com/omxtrade/omx/models/datatypes"
	"github.com/omxtrade/omx/mq_client"
	"github.com/omxtrade/omx/types"
)

type OrderStatus string

const (
	StatusPending     OrderStatus = "pending"
	StatusValidated   OrderStatus = "validated"
	StatusRejected    OrderStatus = "rejected"
	StatusHeld        OrderStatus = "held"
	StatusWorking     OrderStatus = "working"
	StatusPartialFill OrderStatus = "partial_fill"
	StatusFilled      OrderStatus = "filled"
	StatusCancelled   OrderStatus = "cancelled"
	StatusExpired     OrderStatus = "expired"
	StatusDoneForDay  OrderStatus = "done_for_day"
)

type Order struct {
	ID                 int64                 `json:"id" gorm:"primaryKey"`
	UUID               uuid.UUID             `json:"uuid" gorm:"default:gen_random_uuid()"`
	TenantID           string                `json:"tenant_id" validate:"required"`
	InstrumentID       string                `json:"instrument_id" validate:"required"`
	Side               types.OrderSide       `json:"side" validate:"SideVaildator"`
	Kind               types.OrderKind       `json:"kind" gorm:"default:limit" validate:"KindVaildator"`
	TimeInForce        types.TimeInForce     `json:"time_in_force" gorm:"default:gtc" validate:"TifVaildator"`
	Price              decimal.NullDecimal   `json:"price" validate:"PriceVaildator"`
	Quantity           decimal.Decimal       `json:"quantity" validate:"QuantityVaildator"`
	FilledQuantity     decimal.Decimal       `json:"filled_quantity" gorm:"default:0.0"`
	RemainingQuantity  decimal.Decimal       `json:"remaining_quantity" gorm:"default:0.0"`
	AvgPrice           decimal.Decimal       `json:"avg_price" gorm:"default:0.0"`
	Status             OrderStatus           `json:"status" gorm:"default:pending"`
	StrategyKind       types.StrategyKind    `json:"strategy_kind" gorm:"default:best_execution" validate:"StrategyVaildator"`
	PreferredProviders datatypes.StringArray `json:"preferred_providers"`
	RoutedProviders    datatypes.StringArray `json:"routed_providers"`
	ChildOrderIDs      datatypes.StringArray `json:"child_order_ids"`
	Version            int64                 `json:"version" gorm:"default:0"`
	ExpiresAt          sql.NullTime          `json:"expires_at"`
	ReceivedAt         time.Time             `json:"received_at"`
	ValidatedAt        sql.NullTime          `json:"validated_at"`
	WorkedAt           sql.NullTime          `json:"worked_at"`
	CompletedAt        sql.NullTime          `json:"completed_at"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

func (o Order) Message() map[string]string {
	invalid_message := "order.invalid_{field}"

	return validate.MS{
		"required": invalid_message,
	}
}

func (o Order) SideVaildator(side types.OrderSide) bool {
	return side == types.SideBuy || side == types.SideSell
}

func (o Order) KindVaildator(kind types.OrderKind) bool {
	supported_kinds := []types.OrderKind{
		types.KindMarket,
		types.KindLimit,
		types.KindStop,
		types.KindStopLimit,
		types.KindPegged,
		types.KindTrailingStop,
	}

	for _, k := range supported_kinds {
		if k == kind {
			return true
		}
	}

	return false
}

func (o Order) TifVaildator(tif types.TimeInForce) bool {
	supported_tifs := []types.TimeInForce{types.TifGTC, types.TifGTD, types.TifDay, types.TifIOC, types.TifFOK}

	for _, t := range supported_tifs {
		if t == tif {
			return true
		}
	}

	return false
}

func (o Order) PriceVaildator(Price decimal.NullDecimal) bool {
	if o.Kind == types.KindMarket {
		return !Price.Valid
	}

	if o.Kind == types.KindLimit || o.Kind == types.KindStopLimit {
		return Price.Valid && Price.Decimal.IsPositive()
	}

	if Price.Valid {
		return Price.Decimal.IsPositive()
	}

	return true
}

func (o Order) QuantityVaildator(Quantity decimal.Decimal) bool {
	return Quantity.IsPositive()
}

func (o Order) StrategyVaildator(kind types.StrategyKind) bool {
	supported_strategies := []types.StrategyKind{
		types.StrategyBestExecution,
		types.StrategyProportionalSplit,
		types.StrategySequentialFallback,
	}

	for _, s := range supported_strategies {
		if s == kind {
			return true
		}
	}

	return false
}

func (o *Order) Validate() error {
	// Field validators are skipped on zero values, so the presence rules for
	// price and quantity live here.
	if (o.Kind == types.KindLimit || o.Kind == types.KindStopLimit) && !o.Price.Valid {
		return errors.New("order.invalid_price")
	}

	if !o.Quantity.IsPositive() {
		return errors.New("order.invalid_quantity")
	}

	v := validate.Struct(o)
	if v.Validate() {
		return nil
	}

	return v.Errors
}

func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusRejected, StatusFilled, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// DONE_FOR_DAY keeps its row immutable for routing even though the day-order
// book may be reopened by upstream product flows.
func (o *Order) IsTerminalForRouting() bool {
	return o.IsTerminal() || o.Status == StatusDoneForDay
}

func (o *Order) IsRoutable() bool {
	return o.Status == StatusValidated || o.Status == StatusHeld
}

func (o *Order) IsImmediateOrCancel() bool {
	return o.TimeInForce == types.TifIOC || o.TimeInForce == types.TifFOK
}

func (o *Order) LimitPrice() (decimal.Decimal, bool) {
	if !o.Price.Valid {
		return decimal.Zero, false
	}

	return o.Price.Decimal, true
}

func (o *Order) Snapshot() datatypes.JSON {
	raw, _ := json.Marshal(o)

	return datatypes.JSON(raw)
}

func (o *Order) TriggerEvent() {
	if o.Status == StatusPending {
		return
	}

	payload_message, _ := json.Marshal(o.ToJSON())

	mq_client.EnqueueEvent("private", o.TenantID, "order", payload_message)
}

func (o *Order) ToJSON() entities.OrderEntity {
	return entities.OrderEntity{
		UUID:               o.UUID,
		Instrument:         o.InstrumentID,
		Side:               o.Side,
		Kind:               o.Kind,
		TimeInForce:        o.TimeInForce,
		Price:              o.Price,
		AvgPrice:           o.AvgPrice,
		Status:             string(o.Status),
		StrategyKind:       o.StrategyKind,
		Quantity:           o.Quantity,
		FilledQuantity:     o.FilledQuantity,
		RemainingQuantity:  o.RemainingQuantity,
		RoutedProviders:    o.RoutedProviders,
		ChildOrderIDs:      o.ChildOrderIDs,
		Version:            o.Version,
		ReceivedAt:         o.ReceivedAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
