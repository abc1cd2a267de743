package lifecycle

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/omxtrade/omx/models"
)

type TransitionResult struct {
	Success        bool
	Order          *models.Order
	PreviousStatus models.OrderStatus
	NewStatus      models.OrderStatus
	Error          error
}

type Engine struct {
	store OrderStore
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{store: NewOrderStore(db)}
}

func NewEngineWithStore(store OrderStore) *Engine {
	return &Engine{store: store}
}

// Transition drives one lifecycle edge as a single atomic unit: lock the
// order row, verify the caller's version, mutate, append one history record
// at version+1 and save. The lifecycle event is published only after the
// transaction commits; on any failure nothing is written and nothing is
// emitted. A version mismatch returns ErrStaleVersion and the caller decides
// whether to reload and retry.
func (e *Engine) Transition(order *models.Order, target models.OrderStatus, opts TransitionOptions) TransitionResult {
	expected_version := order.Version

	var stored *models.Order
	var previous models.OrderStatus
	var event string

	err := e.store.Transaction(func(tx OrderTx) error {
		var err error

		stored, err = tx.LockOrder(order.ID)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				return err
			}
			return &PersistenceError{Err: err}
		}

		if stored.Version != expected_version {
			return ErrStaleVersion
		}

		previous = stored.Status

		event, err = apply(stored, target, opts, time.Now())
		if err != nil {
			return err
		}

		if err := tx.SaveOrder(stored); err != nil {
			return &PersistenceError{Err: err}
		}

		history := OrderHistoryFor(stored, previous, event, opts)
		if err := tx.CreateHistory(&history); err != nil {
			return &PersistenceError{Err: err}
		}

		return nil
	})

	if err != nil {
		return TransitionResult{
			Success:        false,
			Order:          order,
			PreviousStatus: order.Status,
			NewStatus:      order.Status,
			Error:          err,
		}
	}

	PublishEvent(event, stored)
	stored.TriggerEvent()

	*order = *stored

	return TransitionResult{
		Success:        true,
		Order:          order,
		PreviousStatus: previous,
		NewStatus:      stored.Status,
	}
}

func (e *Engine) GetHistory(order_id int64) ([]models.OrderHistory, error) {
	return e.store.History(order_id)
}

func OrderHistoryFor(order *models.Order, previous models.OrderStatus, event string, opts TransitionOptions) models.OrderHistory {
	var reason sql.NullString
	if opts.Reason != "" {
		reason = sql.NullString{String: opts.Reason, Valid: true}
	}

	actor := opts.Actor
	if actor == "" {
		actor = "system"
	}

	return models.OrderHistory{
		OrderID:        order.ID,
		Version:        order.Version,
		PreviousStatus: previous,
		NewStatus:      order.Status,
		Event:          event,
		Snapshot:       order.Snapshot(),
		Reason:         reason,
		Actor:          actor,
	}
}
