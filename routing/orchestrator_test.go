package routing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/lifecycle"
	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

// stubOrderStore backs the engine for routing tests; it commits in place,
// transactional rollback behavior is covered with the engine itself.
type stubOrderStore struct {
	orders    map[int64]models.Order
	histories []models.OrderHistory
}

func newStubOrderStore(orders ...*models.Order) *stubOrderStore {
	store := &stubOrderStore{orders: map[int64]models.Order{}}
	for _, order := range orders {
		store.orders[order.ID] = *order
	}

	return store
}

func (s *stubOrderStore) Transaction(fn func(tx lifecycle.OrderTx) error) error {
	return fn(s)
}

func (s *stubOrderStore) History(order_id int64) ([]models.OrderHistory, error) {
	records := make([]models.OrderHistory, 0)
	for _, history := range s.histories {
		if history.OrderID == order_id {
			records = append(records, history)
		}
	}

	return records, nil
}

func (s *stubOrderStore) LockOrder(id int64) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, lifecycle.ErrOrderNotFound
	}

	return &order, nil
}

func (s *stubOrderStore) SaveOrder(order *models.Order) error {
	s.orders[order.ID] = *order
	return nil
}

func (s *stubOrderStore) CreateHistory(history *models.OrderHistory) error {
	s.histories = append(s.histories, *history)
	return nil
}

type memoryChildRecorder struct {
	mutex    sync.Mutex
	children []*models.ChildOrder
}

func (r *memoryChildRecorder) RecordChildOrder(child *models.ChildOrder) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.children = append(r.children, child)
	return nil
}

type suiteOrchestratorTester struct {
	suite.Suite

	gateway      *fakeGateway
	registry     *breaker.Registry
	orchestrator *Orchestrator
}

func (s *suiteOrchestratorTester) SetupTest() {
	config.NewLoggerService()

	s.gateway = newFakeGateway()
	s.registry = breaker.NewRegistry()
	s.orchestrator = NewOrchestrator(nil, s.registry, s.gateway)
}

func (s *suiteOrchestratorTester) validatedOrder() *models.Order {
	quantity := decimal.NewFromInt(1_000_000)

	return &models.Order{
		ID:                7,
		TenantID:          "acme",
		InstrumentID:      "EUR/USD",
		Side:              types.SideBuy,
		Kind:              types.KindMarket,
		TimeInForce:       types.TifGTC,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		StrategyKind:      types.StrategyBestExecution,
		Status:            models.StatusValidated,
		Version:           2,
	}
}

func (s *suiteOrchestratorTester) TestRejectsNonRoutableOrder() {
	order := s.validatedOrder()
	order.Status = models.StatusPending

	result := s.orchestrator.RouteWithProviders(context.Background(), order, []string{"lp-a"})

	s.False(result.Success)
	s.Require().Len(result.Errors, 1)
	s.True(errors.Is(result.Errors[0], ErrNotRoutable))
	s.Equal(models.StatusPending, order.Status)
	s.Equal(int64(2), order.Version)
	s.Empty(s.gateway.asked, "no provider may be contacted for a non-routable order")
}

func (s *suiteOrchestratorTester) TestFailsWithoutHealthyProviders() {
	order := s.validatedOrder()

	result := s.orchestrator.RouteWithProviders(context.Background(), order, nil)

	s.False(result.Success)
	s.Require().Len(result.Errors, 1)
	s.True(errors.Is(result.Errors[0], ErrNoHealthyLiquidity))
	s.Equal(models.StatusValidated, order.Status)
}

func (s *suiteOrchestratorTester) TestFailsWhenEveryQuoteRequestErrors() {
	order := s.validatedOrder()
	s.gateway.errs["lp-a"] = errors.New("timeout")
	s.gateway.errs["lp-b"] = errors.New("timeout")

	result := s.orchestrator.RouteWithProviders(context.Background(), order, []string{"lp-a", "lp-b"})

	s.False(result.Success)
	s.Require().Len(result.Errors, 1)
	s.True(errors.Is(result.Errors[0], ErrNoQuotes))
	s.Equal(models.StatusValidated, order.Status)
	s.Equal(int64(2), order.Version)

	status, ok := s.registry.Status("lp-a")
	s.Require().True(ok)
	s.Equal(1, status.ConsecutiveFailures)
}

func (s *suiteOrchestratorTester) TestFailsWhenNoQuoteSatisfiesTheLimit() {
	order := s.validatedOrder()
	order.Kind = types.KindLimit
	order.Price = decimal.NewNullDecimal(decimal.RequireFromString("1.0800"))

	s.gateway.quotes["lp-a"] = Quote{
		Price:             decimal.RequireFromString("1.0860"),
		AvailableQuantity: decimal.NewFromInt(500_000),
		ValidUntil:        time.Now().Add(time.Minute),
	}

	result := s.orchestrator.RouteWithProviders(context.Background(), order, []string{"lp-a"})

	s.False(result.Success)
	s.Require().Len(result.Errors, 1)
	s.True(errors.Is(result.Errors[0], ErrNoValidDecisions))
	s.Empty(result.Decisions)
	s.Equal(models.StatusValidated, order.Status)
}

func (s *suiteOrchestratorTester) TestFailsOnUnknownStrategy() {
	order := s.validatedOrder()
	order.StrategyKind = "twap"

	s.gateway.quotes["lp-a"] = Quote{
		Price:             decimal.RequireFromString("1.0860"),
		AvailableQuantity: decimal.NewFromInt(500_000),
		ValidUntil:        time.Now().Add(time.Minute),
	}

	result := s.orchestrator.RouteWithProviders(context.Background(), order, []string{"lp-a"})

	s.False(result.Success)
	s.Require().Len(result.Errors, 1)
	s.Error(result.Errors[0])
	s.Equal(models.StatusValidated, order.Status)
}

func (s *suiteOrchestratorTester) TestPartialDispatchStillReachesWorking() {
	order := s.validatedOrder()
	store := newStubOrderStore(order)
	recorder := &memoryChildRecorder{}

	orchestrator := NewOrchestrator(lifecycle.NewEngineWithStore(store), s.registry, s.gateway)
	orchestrator.recorder = recorder

	later := time.Now().Add(time.Minute)
	s.gateway.quotes["lp-a"] = Quote{Price: decimal.RequireFromString("1.0860"), AvailableQuantity: decimal.NewFromInt(500_000), ValidUntil: later}
	s.gateway.quotes["lp-b"] = Quote{Price: decimal.RequireFromString("1.0850"), AvailableQuantity: decimal.NewFromInt(500_000), ValidUntil: later}
	s.gateway.orderIDs["lp-b"] = "B-1"
	s.gateway.orderErrs["lp-a"] = errors.New("rejected by venue")

	result := orchestrator.RouteWithProviders(context.Background(), order, []string{"lp-a", "lp-b"})

	s.True(result.Success, "one placed child is enough to go WORKING")
	s.Require().Len(result.Errors, 1)

	var dispatch_err *DispatchError
	s.Require().True(errors.As(result.Errors[0], &dispatch_err))
	s.Equal("lp-a", dispatch_err.ProviderID)

	s.Equal(models.StatusWorking, order.Status)
	s.Equal(int64(3), order.Version)
	s.Equal([]string{"lp-b"}, []string(order.RoutedProviders))
	s.Equal([]string{"B-1"}, result.WorkingProviderOrderIDs)

	s.Require().Len(recorder.children, 1)
	s.Equal("lp-b", recorder.children[0].ProviderID)
	s.Equal("B-1", recorder.children[0].ProviderOrderID.String)
	s.Equal(models.ChildStateSent, recorder.children[0].Status)

	status_a, ok := s.registry.Status("lp-a")
	s.Require().True(ok)
	s.Equal(1, status_a.ConsecutiveFailures)

	status_b, ok := s.registry.Status("lp-b")
	s.Require().True(ok)
	s.Equal(0, status_b.ConsecutiveFailures)

	histories, err := orchestrator.engine.GetHistory(order.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 1)
	s.Equal(int64(3), histories[0].Version)
	s.Equal(models.StatusWorking, histories[0].NewStatus)
	s.Equal("router", histories[0].Actor)
}

func (s *suiteOrchestratorTester) TestOpenBreakerExcludedFromHealthySet() {
	for i := 0; i < breaker.DefaultFailureThreshold; i++ {
		s.registry.RecordFailure("lp-a", "refused")
	}

	s.True(s.registry.IsOpen("lp-a"))
	s.False(s.registry.IsOpen("lp-b"))
}

func TestOrchestrator(t *testing.T) {
	suite.Run(t, new(suiteOrchestratorTester))
}
