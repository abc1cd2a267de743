package routing

import (
	"errors"
	"fmt"
)

var (
	ErrNoHealthyLiquidity = errors.New("routing.order.no_healthy_liquidity")
	ErrNoQuotes           = errors.New("routing.order.no_quotes")
	ErrNoValidDecisions   = errors.New("routing.order.no_valid_routing_decisions")
	ErrNotRoutable        = errors.New("routing.order.not_routable")
)

// DispatchError is a per-provider child-order failure. It is absorbed into
// the provider's circuit breaker and surfaced alongside an otherwise
// successful routing result.
type DispatchError struct {
	ProviderID string
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("routing.dispatch.failed: %s: %v", e.ProviderID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
