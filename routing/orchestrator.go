package routing

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/lifecycle"
	"github.com/omxtrade/omx/models"
)

type RouteResult struct {
	Success                 bool              `json:"success"`
	WorkingProviderOrderIDs []string          `json:"working_provider_order_ids"`
	Decisions               []RoutingDecision `json:"decisions"`
	Errors                  []error           `json:"-"`
}

// ChildOrderRecorder persists the child orders born from a dispatch pass.
type ChildOrderRecorder interface {
	RecordChildOrder(child *models.ChildOrder) error
}

type dbChildOrderRecorder struct{}

func (dbChildOrderRecorder) RecordChildOrder(child *models.ChildOrder) error {
	if err := config.DataBase.Create(child).Error; err != nil {
		return err
	}

	child.WriteToInflux()

	return nil
}

// Orchestrator ties the registry, the aggregator, a strategy and the state
// machine together for one routing pass.
type Orchestrator struct {
	engine     *lifecycle.Engine
	registry   *breaker.Registry
	gateway    ProviderGateway
	aggregator *QuoteAggregator
	recorder   ChildOrderRecorder
}

func NewOrchestrator(engine *lifecycle.Engine, registry *breaker.Registry, gateway ProviderGateway) *Orchestrator {
	return &Orchestrator{
		engine:     engine,
		registry:   registry,
		gateway:    gateway,
		aggregator: NewQuoteAggregator(gateway, registry),
		recorder:   dbChildOrderRecorder{},
	}
}

// HealthyProviders is the configured enabled provider set minus providers
// whose circuit is open. The half-open probe admission happens inside IsOpen.
func (o *Orchestrator) HealthyProviders() []string {
	providers := models.EnabledProviders()
	healthy := make([]string, 0, len(providers))

	for _, provider := range providers {
		if !o.registry.IsOpen(provider.ID) {
			healthy = append(healthy, provider.ID)
		}
	}

	return healthy
}

// RouteOrder runs the full routing pass: healthy providers, quotes, strategy,
// concurrent dispatch, WORKING transition. Failures before any child order is
// placed leave the order exactly as it was; once at least one child is placed
// the order goes to WORKING and the unplaced remainder is reported as errors
// next to the successful result.
func (o *Orchestrator) RouteOrder(ctx context.Context, order *models.Order) RouteResult {
	return o.RouteWithProviders(ctx, order, o.HealthyProviders())
}

// RouteWithProviders is RouteOrder with the healthy-provider resolution
// already done, which also makes the pass reproducible against a fixed
// provider set.
func (o *Orchestrator) RouteWithProviders(ctx context.Context, order *models.Order, healthy []string) RouteResult {
	started := time.Now()

	if !order.IsRoutable() {
		return RouteResult{Success: false, Errors: []error{ErrNotRoutable}}
	}

	if len(healthy) == 0 {
		return RouteResult{Success: false, Errors: []error{ErrNoHealthyLiquidity}}
	}

	quotes := o.aggregator.Collect(ctx, order, healthy)
	if len(quotes) == 0 {
		return RouteResult{Success: false, Errors: []error{ErrNoQuotes}}
	}

	strategy, err := StrategyFor(order.StrategyKind)
	if err != nil {
		return RouteResult{Success: false, Errors: []error{err}}
	}

	allocation := strategy.Allocate(order, quotes, time.Now())
	if len(allocation.Decisions) == 0 {
		return RouteResult{Success: false, Decisions: allocation.Decisions, Errors: []error{ErrNoValidDecisions}}
	}

	placed, dispatch_errors := o.dispatch(ctx, order, allocation.Decisions)

	result := RouteResult{
		Decisions: allocation.Decisions,
		Errors:    dispatch_errors,
	}

	if len(placed) == 0 {
		return result
	}

	routed_providers := make([]string, 0, len(placed))
	child_ids := make([]string, 0, len(placed))
	for _, child := range placed {
		routed_providers = append(routed_providers, child.ProviderID)
		child_ids = append(child_ids, child.ClientID.String())
		result.WorkingProviderOrderIDs = append(result.WorkingProviderOrderIDs, child.ProviderOrderID.String)
	}

	transition := o.engine.Transition(order, models.StatusWorking, lifecycle.TransitionOptions{
		Actor:           "router",
		RoutedProviders: routed_providers,
		ChildOrderIDs:   child_ids,
	})
	if !transition.Success {
		result.Errors = append(result.Errors, transition.Error)
		return result
	}

	result.Success = true

	WriteRoutingMetric(order, strategy.Name(), allocation, len(healthy), len(placed), time.Since(started))

	return result
}

// dispatch sends one child order per decision, concurrently so slow
// providers do not stack up latency. Each outcome feeds the provider's
// circuit breaker on its own; one failure never aborts the others.
func (o *Orchestrator) dispatch(ctx context.Context, order *models.Order, decisions []RoutingDecision) ([]*models.ChildOrder, []error) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	placed := make([]*models.ChildOrder, 0, len(decisions))
	dispatch_errors := make([]error, 0)

	for _, decision := range decisions {
		wg.Add(1)

		go func(decision RoutingDecision) {
			defer wg.Done()

			child := &models.ChildOrder{
				ClientID:     uuid.New(),
				OrderID:      order.ID,
				ProviderID:   decision.ProviderID,
				InstrumentID: order.InstrumentID,
				Side:         order.Side,
				Price:        decision.Price,
				Quantity:     decision.Quantity,
				Status:       models.ChildStateSent,
			}

			provider_order_id, err := o.gateway.SendOrder(ctx, decision.ProviderID, ChildOrderSpec{
				ClientID:     child.ClientID.String(),
				InstrumentID: order.InstrumentID,
				Side:         order.Side,
				Quantity:     decision.Quantity,
				Price:        decision.Price,
			})

			if err != nil {
				o.registry.RecordFailure(decision.ProviderID, err.Error())
				config.Logger.Warnf("Dispatch to %s failed for order %d: %v", decision.ProviderID, order.ID, err)

				mu.Lock()
				dispatch_errors = append(dispatch_errors, &DispatchError{ProviderID: decision.ProviderID, Err: err})
				mu.Unlock()
				return
			}

			o.registry.RecordSuccess(decision.ProviderID)

			child.ProviderOrderID = sql.NullString{String: provider_order_id, Valid: true}
			if err := o.recorder.RecordChildOrder(child); err != nil {
				config.Logger.Errorf("Failed to persist child order for %s: %v", decision.ProviderID, err)
			}

			mu.Lock()
			placed = append(placed, child)
			mu.Unlock()
		}(decision)
	}

	wg.Wait()

	return placed, dispatch_errors
}
