package lifecycle

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
)

type TransitionOptions struct {
	Reason       string
	Actor        string
	FillQuantity decimal.Decimal
	FillPrice    decimal.Decimal
	BypassGuard  bool

	// Set by the routing orchestrator on the WORKING transition so the
	// placed child orders land in the same atomic unit.
	RoutedProviders []string
	ChildOrderIDs   []string
}

// apply validates the edge and mutates the order in place: status, fill
// accounting, timestamps and a version bump of exactly 1. It never touches
// storage; the engine wraps it in the locked transaction.
func apply(order *models.Order, target models.OrderStatus, opts TransitionOptions, now time.Time) (string, error) {
	spec, found := lookupEdge(order.Status, target)
	if !found {
		return "", &InvalidTransitionError{From: order.Status, To: target}
	}

	if !opts.BypassGuard {
		if ok, reason := spec.Guard.Evaluate(order, opts); !ok {
			return "", &GuardRejectedError{Guard: spec.Guard, Reason: reason}
		}
	}

	if target == models.StatusPartialFill || target == models.StatusFilled {
		target = applyFill(order, opts)
		spec, _ = lookupEdge(order.Status, target)
	}

	if len(opts.RoutedProviders) > 0 {
		order.RoutedProviders = append(order.RoutedProviders, opts.RoutedProviders...)
	}
	if len(opts.ChildOrderIDs) > 0 {
		order.ChildOrderIDs = append(order.ChildOrderIDs, opts.ChildOrderIDs...)
	}

	order.Status = target
	order.Version++
	stampTransition(order, target, now)

	return spec.Event, nil
}

// applyFill recomputes fill accounting and the running volume-weighted
// average price. Reaching the full order quantity forces FILLED regardless
// of the caller's target.
func applyFill(order *models.Order, opts TransitionOptions) models.OrderStatus {
	oldFilled := order.FilledQuantity
	newFilled := oldFilled.Add(opts.FillQuantity)

	if oldFilled.IsZero() {
		order.AvgPrice = opts.FillPrice
	} else {
		notional := order.AvgPrice.Mul(oldFilled).Add(opts.FillPrice.Mul(opts.FillQuantity))
		order.AvgPrice = notional.Div(newFilled)
	}

	order.FilledQuantity = newFilled
	order.RemainingQuantity = order.Quantity.Sub(newFilled)

	if newFilled.GreaterThanOrEqual(order.Quantity) {
		return models.StatusFilled
	}

	return models.StatusPartialFill
}

func stampTransition(order *models.Order, target models.OrderStatus, now time.Time) {
	switch target {
	case models.StatusValidated:
		order.ValidatedAt = sql.NullTime{Time: now, Valid: true}
	case models.StatusWorking:
		if !order.WorkedAt.Valid {
			order.WorkedAt = sql.NullTime{Time: now, Valid: true}
		}
	}

	if order.IsTerminal() || target == models.StatusDoneForDay {
		order.CompletedAt = sql.NullTime{Time: now, Valid: true}
	}
}
