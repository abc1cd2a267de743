package models

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/omxtrade/omx/models/datatypes"
)

// OrderHistory rows are append-only: for one order the versions form a
// gapless sequence starting at 1.
type OrderHistory struct {
	ID             uint64         `json:"id" gorm:"primaryKey"`
	OrderID        int64          `json:"order_id" gorm:"index:idx_order_histories_order_version,unique"`
	Version        int64          `json:"version" gorm:"index:idx_order_histories_order_version,unique"`
	PreviousStatus OrderStatus    `json:"previous_status"`
	NewStatus      OrderStatus    `json:"new_status"`
	Event          string         `json:"event"`
	Snapshot       datatypes.JSON `json:"snapshot"`
	Reason         sql.NullString `json:"reason"`
	Actor          string         `json:"actor"`
	CreatedAt      time.Time      `json:"created_at"`
}

func GetOrderHistory(db *gorm.DB, order_id int64) ([]OrderHistory, error) {
	records := make([]OrderHistory, 0)

	result := db.Where("order_id = ?", order_id).Order("version asc").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}
