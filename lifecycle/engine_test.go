package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/models"
)

// memoryOrderStore keeps orders and history in maps and commits a transaction
// by swapping in its staged copies, so a returned error leaves the store
// exactly as it was.
type memoryOrderStore struct {
	orders    map[int64]models.Order
	histories []models.OrderHistory
}

func newMemoryOrderStore(orders ...*models.Order) *memoryOrderStore {
	store := &memoryOrderStore{orders: map[int64]models.Order{}}
	for _, order := range orders {
		store.orders[order.ID] = *order
	}

	return store
}

type memoryOrderTx struct {
	orders    map[int64]models.Order
	histories []models.OrderHistory
}

func (s *memoryOrderStore) Transaction(fn func(tx OrderTx) error) error {
	tx := &memoryOrderTx{
		orders:    make(map[int64]models.Order, len(s.orders)),
		histories: append([]models.OrderHistory(nil), s.histories...),
	}
	for id, order := range s.orders {
		tx.orders[id] = order
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.orders = tx.orders
	s.histories = tx.histories

	return nil
}

func (s *memoryOrderStore) History(order_id int64) ([]models.OrderHistory, error) {
	records := make([]models.OrderHistory, 0)
	for _, history := range s.histories {
		if history.OrderID == order_id {
			records = append(records, history)
		}
	}

	return records, nil
}

func (t *memoryOrderTx) LockOrder(id int64) (*models.Order, error) {
	order, ok := t.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return &order, nil
}

func (t *memoryOrderTx) SaveOrder(order *models.Order) error {
	t.orders[order.ID] = *order
	return nil
}

func (t *memoryOrderTx) CreateHistory(history *models.OrderHistory) error {
	for _, existing := range t.histories {
		if existing.OrderID == history.OrderID && existing.Version == history.Version {
			return fmt.Errorf("duplicate history version %d for order %d", history.Version, history.OrderID)
		}
	}

	t.histories = append(t.histories, *history)
	return nil
}

type suiteEngineTester struct {
	suite.Suite
}

func (s *suiteEngineTester) SetupTest() {
	config.NewLoggerService()
}

func (s *suiteEngineTester) pendingOrder() *models.Order {
	quantity := decimal.NewFromInt(1000)

	return &models.Order{
		ID:                42,
		TenantID:          "acme",
		InstrumentID:      "EUR/USD",
		Side:              "buy",
		Kind:              "market",
		TimeInForce:       "gtc",
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            models.StatusPending,
	}
}

func (s *suiteEngineTester) TestStaleVersionLeavesStoreUntouched() {
	order := s.pendingOrder()
	order.Status = models.StatusValidated
	order.Version = 3

	store := newMemoryOrderStore(order)
	engine := NewEngineWithStore(store)

	stale := *order
	stale.Version = 2

	result := engine.Transition(&stale, models.StatusWorking, TransitionOptions{})

	s.False(result.Success)
	s.True(errors.Is(result.Error, ErrStaleVersion))
	s.Equal(models.StatusValidated, stale.Status)

	kept := store.orders[order.ID]
	s.Equal(models.StatusValidated, kept.Status)
	s.Equal(int64(3), kept.Version)
	s.Empty(store.histories)
}

func (s *suiteEngineTester) TestHistoryVersionsAreGapless() {
	order := s.pendingOrder()
	store := newMemoryOrderStore(order)
	engine := NewEngineWithStore(store)

	fill := decimal.NewFromInt(400)
	price := decimal.RequireFromString("1.0850")

	steps := []struct {
		target models.OrderStatus
		opts   TransitionOptions
	}{
		{models.StatusValidated, TransitionOptions{}},
		{models.StatusWorking, TransitionOptions{}},
		{models.StatusPartialFill, TransitionOptions{FillQuantity: fill, FillPrice: price}},
		{models.StatusFilled, TransitionOptions{FillQuantity: decimal.NewFromInt(600), FillPrice: price}},
	}

	for _, step := range steps {
		result := engine.Transition(order, step.target, step.opts)
		s.Require().True(result.Success, "transition to %s: %v", step.target, result.Error)
	}

	s.Equal(models.StatusFilled, order.Status)
	s.Equal(int64(4), order.Version)

	histories, err := engine.GetHistory(order.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 4)

	for i, history := range histories {
		s.Equal(int64(i+1), history.Version)
		if i > 0 {
			s.Equal(histories[i-1].NewStatus, history.PreviousStatus)
		}
	}

	s.Equal("order_validated", histories[0].Event)
	s.Equal("order_filled", histories[3].Event)
}

func (s *suiteEngineTester) TestRejectedEdgeWritesNothing() {
	order := s.pendingOrder()
	store := newMemoryOrderStore(order)
	engine := NewEngineWithStore(store)

	result := engine.Transition(order, models.StatusWorking, TransitionOptions{})

	s.False(result.Success)

	var invalid *InvalidTransitionError
	s.True(errors.As(result.Error, &invalid))

	kept := store.orders[order.ID]
	s.Equal(models.StatusPending, kept.Status)
	s.Equal(int64(0), kept.Version)
	s.Empty(store.histories)
	s.Equal(models.StatusPending, order.Status)
}

func (s *suiteEngineTester) TestUnknownOrder() {
	store := newMemoryOrderStore()
	engine := NewEngineWithStore(store)

	order := s.pendingOrder()
	result := engine.Transition(order, models.StatusValidated, TransitionOptions{})

	s.False(result.Success)
	s.True(errors.Is(result.Error, ErrOrderNotFound))
}

func (s *suiteEngineTester) TestCallerSeesTheStoredRow() {
	order := s.pendingOrder()
	store := newMemoryOrderStore(order)
	engine := NewEngineWithStore(store)

	result := engine.Transition(order, models.StatusValidated, TransitionOptions{Actor: "order_processor"})

	s.True(result.Success)
	s.Equal(models.StatusPending, result.PreviousStatus)
	s.Equal(models.StatusValidated, result.NewStatus)
	s.Equal(models.StatusValidated, order.Status)
	s.Equal(int64(1), order.Version)
	s.True(order.ValidatedAt.Valid)

	histories, err := engine.GetHistory(order.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 1)
	s.Equal("order_processor", histories[0].Actor)
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(suiteEngineTester))
}
