package cron

import (
	"time"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/lifecycle"
	"github.com/omxtrade/omx/models"
)

// OrderExpiryJob expires day and good-till-date orders whose expiry has
// passed. Each order goes through the state machine like any other
// transition, so history and events stay consistent.
type OrderExpiryJob struct {
	engine *lifecycle.Engine
}

func NewOrderExpiryJob() *OrderExpiryJob {
	return &OrderExpiryJob{engine: lifecycle.NewEngine(config.DataBase)}
}

func (j *OrderExpiryJob) Process() {
	expirable := []models.OrderStatus{models.StatusHeld, models.StatusWorking, models.StatusPartialFill}

	var orders []models.Order
	config.DataBase.
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?", expirable, time.Now()).
		Find(&orders)

	for _, order := range orders {
		order := order

		result := j.engine.Transition(&order, models.StatusExpired, lifecycle.TransitionOptions{
			Actor:  "cron",
			Reason: "time in force elapsed",
		})
		if !result.Success {
			config.Logger.Warnf("Failed to expire order %d: %v", order.ID, result.Error)
		}
	}
}
