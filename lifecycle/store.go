package lifecycle

import (
	"errors"

	"gorm.io/gorm"

	"github.com/omxtrade/omx/models"
)

// OrderTx is one row-locked unit of work against the order store.
type OrderTx interface {
	LockOrder(id int64) (*models.Order, error)
	SaveOrder(order *models.Order) error
	CreateHistory(history *models.OrderHistory) error
}

// OrderStore abstracts order persistence so every engine read and write goes
// through one handle.
type OrderStore interface {
	Transaction(fn func(tx OrderTx) error) error
	History(order_id int64) ([]models.OrderHistory, error)
}

type gormOrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) OrderStore {
	return &gormOrderStore{db: db}
}

func (s *gormOrderStore) Transaction(fn func(tx OrderTx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderTx{tx: tx})
	})
}

func (s *gormOrderStore) History(order_id int64) ([]models.OrderHistory, error) {
	return models.GetOrderHistory(s.db, order_id)
}

type gormOrderTx struct {
	tx *gorm.DB
}

func (t *gormOrderTx) LockOrder(id int64) (*models.Order, error) {
	var order models.Order

	result := models.Lock(t.tx).Where("id = ?", id).First(&order)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &order, nil
}

func (t *gormOrderTx) SaveOrder(order *models.Order) error {
	return t.tx.Save(order).Error
}

func (t *gormOrderTx) CreateHistory(history *models.OrderHistory) error {
	return t.tx.Create(history).Error
}
