package engines

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/lifecycle"
	"github.com/omxtrade/omx/models"
)

// staleRetryLimit bounds reload-and-retry on version conflicts. The engine
// itself never retries; this worker owns that policy for execution reports.
const staleRetryLimit = 3

const (
	ExecTypeFill       = "fill"
	ExecTypeCancel     = "cancel"
	ExecTypeDoneForDay = "done_for_day"
	ExecTypeExpired    = "expired"
)

type ExecutionReportPayload struct {
	OrderID         int64           `json:"order_id"`
	ProviderID      string          `json:"provider_id"`
	ProviderOrderID string          `json:"provider_order_id"`
	ExecType        string          `json:"exec_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
}

// ExecutionProcessorWorker re-enters provider execution confirmations into
// the state machine.
type ExecutionProcessorWorker struct {
	engine   *lifecycle.Engine
	registry *breaker.Registry
}

func NewExecutionProcessorWorker(registry *breaker.Registry) *ExecutionProcessorWorker {
	return &ExecutionProcessorWorker{
		engine:   lifecycle.NewEngine(config.DataBase),
		registry: registry,
	}
}

func (w *ExecutionProcessorWorker) Process(payload []byte) error {
	var report ExecutionReportPayload
	if err := json.Unmarshal(payload, &report); err != nil {
		return err
	}

	switch report.ExecType {
	case ExecTypeFill:
		return w.processFill(report)
	case ExecTypeCancel:
		return w.transitionWithRetry(report, models.StatusCancelled, lifecycle.TransitionOptions{
			Actor:  "execution_processor",
			Reason: "cancelled by provider " + report.ProviderID,
		})
	case ExecTypeDoneForDay:
		return w.transitionWithRetry(report, models.StatusDoneForDay, lifecycle.TransitionOptions{
			Actor: "execution_processor",
		})
	case ExecTypeExpired:
		return w.transitionWithRetry(report, models.StatusExpired, lifecycle.TransitionOptions{
			Actor: "execution_processor",
		})
	default:
		config.Logger.Errorf("Unknown exec type: %s", report.ExecType)
		return nil
	}
}

func (w *ExecutionProcessorWorker) processFill(report ExecutionReportPayload) error {
	w.registry.RecordSuccess(report.ProviderID)
	w.applyChildFill(report)

	for attempt := 0; attempt < staleRetryLimit; attempt++ {
		var order models.Order
		if err := config.DataBase.First(&order, "id = ?", report.OrderID).Error; err != nil {
			return err
		}

		target := models.StatusFilled
		if report.Quantity.LessThan(order.RemainingQuantity) {
			target = models.StatusPartialFill
		}

		result := w.engine.Transition(&order, target, lifecycle.TransitionOptions{
			Actor:        "execution_processor",
			FillQuantity: report.Quantity,
			FillPrice:    report.Price,
		})

		if result.Success {
			return nil
		}

		if errors.Is(result.Error, lifecycle.ErrStaleVersion) {
			continue
		}

		return result.Error
	}

	return lifecycle.ErrStaleVersion
}

func (w *ExecutionProcessorWorker) transitionWithRetry(report ExecutionReportPayload, target models.OrderStatus, opts lifecycle.TransitionOptions) error {
	for attempt := 0; attempt < staleRetryLimit; attempt++ {
		var order models.Order
		if err := config.DataBase.First(&order, "id = ?", report.OrderID).Error; err != nil {
			return err
		}

		if order.IsTerminal() {
			return nil
		}

		result := w.engine.Transition(&order, target, opts)
		if result.Success {
			return nil
		}

		if errors.Is(result.Error, lifecycle.ErrStaleVersion) {
			continue
		}

		return result.Error
	}

	return lifecycle.ErrStaleVersion
}

func (w *ExecutionProcessorWorker) applyChildFill(report ExecutionReportPayload) {
	var child models.ChildOrder
	result := config.DataBase.Where("order_id = ? AND provider_order_id = ?", report.OrderID, report.ProviderOrderID).First(&child)
	if result.Error != nil {
		return
	}

	child.FilledQuantity = child.FilledQuantity.Add(report.Quantity)
	if child.FilledQuantity.GreaterThanOrEqual(child.Quantity) {
		child.Status = models.ChildStateFilled
	} else {
		child.Status = models.ChildStatePartFill
	}

	config.DataBase.Save(&child)
	child.WriteToInflux()
}
