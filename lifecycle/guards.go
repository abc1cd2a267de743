package lifecycle

import (
	"github.com/omxtrade/omx/models"
)

type GuardKind int

const (
	GuardNone GuardKind = iota
	GuardHold
	GuardCancel
	GuardFill
	GuardPartialFill
)

func (g GuardKind) String() string {
	switch g {
	case GuardHold:
		return "can_hold"
	case GuardCancel:
		return "can_cancel"
	case GuardFill:
		return "can_fill"
	case GuardPartialFill:
		return "can_partial_fill"
	default:
		return "none"
	}
}

// Evaluate runs the guard against the order and the proposed payload.
func (g GuardKind) Evaluate(order *models.Order, opts TransitionOptions) (bool, string) {
	switch g {
	case GuardNone:
		return true, ""
	case GuardHold:
		return evaluateHold(order)
	case GuardCancel:
		return evaluateCancel(order)
	case GuardFill:
		return evaluateFill(order, opts)
	case GuardPartialFill:
		return evaluatePartialFill(order, opts)
	default:
		return false, "unknown guard"
	}
}

func evaluateHold(order *models.Order) (bool, string) {
	if order.IsImmediateOrCancel() {
		return false, "immediate orders cannot be held"
	}

	return true, ""
}

func evaluateCancel(order *models.Order) (bool, string) {
	if order.IsTerminal() {
		return false, "order is already terminal"
	}

	return true, ""
}

func evaluateFill(order *models.Order, opts TransitionOptions) (bool, string) {
	if !opts.FillQuantity.IsPositive() {
		return false, "fill quantity must be positive"
	}

	if opts.FillQuantity.GreaterThan(order.RemainingQuantity) {
		return false, "fill quantity exceeds remaining quantity"
	}

	return true, ""
}

func evaluatePartialFill(order *models.Order, opts TransitionOptions) (bool, string) {
	if !opts.FillQuantity.IsPositive() {
		return false, "fill quantity must be positive"
	}

	if opts.FillQuantity.GreaterThanOrEqual(order.RemainingQuantity) {
		return false, "partial fill must be strictly less than remaining quantity"
	}

	return true, ""
}
