package lifecycle

import (
	"errors"
	"fmt"

	"github.com/omxtrade/omx/models"
)

var (
	ErrStaleVersion  = errors.New("lifecycle.order.stale_version")
	ErrOrderNotFound = errors.New("lifecycle.order.not_found")
)

type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("lifecycle.order.invalid_transition: %s -> %s", e.From, e.To)
}

type GuardRejectedError struct {
	Guard  GuardKind
	Reason string
}

func (e *GuardRejectedError) Error() string {
	return fmt.Sprintf("lifecycle.order.guard_rejected: %s: %s", e.Guard, e.Reason)
}

type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "lifecycle.order.persistence_failure: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
