package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/types"
)

const (
	ChildStateSent      = "sent"
	ChildStateRejected  = "rejected"
	ChildStatePartFill  = "partial_fill"
	ChildStateFilled    = "filled"
	ChildStateCancelled = "cancelled"
)

// ChildOrder is one slice of a parent order dispatched to a provider.
type ChildOrder struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	ClientID        uuid.UUID       `json:"client_id" gorm:"default:gen_random_uuid()"`
	OrderID         int64           `json:"order_id" gorm:"index"`
	ProviderID      string          `json:"provider_id"`
	ProviderOrderID sql.NullString  `json:"provider_order_id"`
	InstrumentID    string          `json:"instrument_id"`
	Side            types.OrderSide `json:"side"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	FilledQuantity  decimal.Decimal `json:"filled_quantity" gorm:"default:0.0"`
	Status          string          `json:"status" gorm:"default:sent"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (c *ChildOrder) ParentOrder() *Order {
	order := &Order{}
	config.DataBase.First(&order, "id = ?", c.OrderID)
	return order
}

func GetChildOrders(order_id int64) []ChildOrder {
	children := make([]ChildOrder, 0)

	config.DataBase.Where("order_id = ?", order_id).Order("id asc").Find(&children)

	return children
}

func (c *ChildOrder) WriteToInflux() {
	if config.InfluxDB == nil {
		return
	}

	price, _ := c.Price.Float64()
	quantity, _ := c.Quantity.Float64()
	filled, _ := c.FilledQuantity.Float64()

	tags := map[string]string{"provider": c.ProviderID, "instrument": c.InstrumentID}
	fields := map[string]interface{}{
		"id":         int32(c.ID),
		"order_id":   c.OrderID,
		"price":      price,
		"quantity":   quantity,
		"filled":     filled,
		"status":     c.Status,
		"created_at": c.CreatedAt,
	}

	config.InfluxDB.NewPoint("child_orders", tags, fields)
}
