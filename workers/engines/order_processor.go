package engines

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/lifecycle"
	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/routing"
	"github.com/omxtrade/omx/types"
)

// routeBudget bounds one end-to-end routing pass: quote fan-out plus
// dispatch. A pass that cannot finish inside it fails fast.
const routeBudget = 75 * time.Millisecond

type OrderProcessorPayloadMessage struct {
	Action types.PayloadAction `json:"action"`
	ID     int64               `json:"id"`
	Reason string              `json:"reason"`
}

type OrderProcessorWorker struct {
	engine       *lifecycle.Engine
	registry     *breaker.Registry
	gateway      routing.ProviderGateway
	orchestrator *routing.Orchestrator
}

func NewOrderProcessorWorker(gateway routing.ProviderGateway, registry *breaker.Registry) *OrderProcessorWorker {
	engine := lifecycle.NewEngine(config.DataBase)

	worker := &OrderProcessorWorker{
		engine:       engine,
		registry:     registry,
		gateway:      gateway,
		orchestrator: routing.NewOrchestrator(engine, registry, gateway),
	}

	StartBreakerSweeper(registry)

	// Pick up orders that were accepted but not yet processed before the
	// last shutdown.
	var orders []models.Order
	config.DataBase.Where("status = ?", models.StatusPending).Find(&orders)
	for _, order := range orders {
		if err := worker.SubmitOrder(order.ID); err != nil {
			config.Logger.Errorf("Failed to resubmit order %d: %v", order.ID, err)
		}
	}

	return worker
}

func (w *OrderProcessorWorker) Process(payload []byte) error {
	var message OrderProcessorPayloadMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return err
	}

	switch message.Action {
	case types.ActionSubmit:
		return w.SubmitOrder(message.ID)
	case types.ActionCancel:
		return w.CancelOrder(message.ID, message.Reason)
	default:
		config.Logger.Errorf("Unknown action: %s", message.Action)
		return nil
	}
}

// SubmitOrder validates a pending order, promotes it to VALIDATED and runs
// one routing pass. A failed routing pass leaves the order VALIDATED; it is
// never silently transitioned.
func (w *OrderProcessorWorker) SubmitOrder(id int64) error {
	var order models.Order
	if err := config.DataBase.First(&order, "id = ?", id).Error; err != nil {
		return err
	}

	if order.Status != models.StatusPending {
		return nil
	}

	if err := order.Validate(); err != nil {
		result := w.engine.Transition(&order, models.StatusRejected, lifecycle.TransitionOptions{
			Actor:  "order_processor",
			Reason: err.Error(),
		})
		return result.Error
	}

	result := w.engine.Transition(&order, models.StatusValidated, lifecycle.TransitionOptions{Actor: "order_processor"})
	if !result.Success {
		return result.Error
	}

	ctx, cancel := context.WithTimeout(context.Background(), routeBudget)
	defer cancel()

	route := w.orchestrator.RouteOrder(ctx, &order)
	for _, route_err := range route.Errors {
		config.Logger.Warnf("Routing order %d: %v", order.ID, route_err)
	}

	if !route.Success {
		config.Logger.Infof("Order %d left %s after failed routing pass", order.ID, order.Status)
	}

	return nil
}

// CancelOrder cancels the parent through the state machine first, then the
// live children at their providers. A child cancel failure feeds that
// provider's breaker only.
func (w *OrderProcessorWorker) CancelOrder(id int64, reason string) error {
	var order models.Order
	if err := config.DataBase.First(&order, "id = ?", id).Error; err != nil {
		return err
	}

	if order.IsTerminal() {
		return nil
	}

	result := w.engine.Transition(&order, models.StatusCancelled, lifecycle.TransitionOptions{
		Actor:  "order_processor",
		Reason: reason,
	})
	if !result.Success {
		var guard_rejected *lifecycle.GuardRejectedError
		if errors.As(result.Error, &guard_rejected) {
			return nil
		}
		return result.Error
	}

	ctx, cancel := context.WithTimeout(context.Background(), routeBudget)
	defer cancel()

	for _, child := range models.GetChildOrders(order.ID) {
		if !child.ProviderOrderID.Valid || child.Status != models.ChildStateSent {
			continue
		}

		if err := w.gateway.CancelOrder(ctx, child.ProviderID, child.ProviderOrderID.String); err != nil {
			w.registry.RecordFailure(child.ProviderID, err.Error())
			config.Logger.Warnf("Cancel at %s failed for child %s: %v", child.ProviderID, child.ClientID, err)
			continue
		}

		child.Status = models.ChildStateCancelled
		config.DataBase.Save(&child)
	}

	return nil
}
