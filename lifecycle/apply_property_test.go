package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/omxtrade/omx/models"
)

// Property: filledQuantity + remainingQuantity == quantity before and after
// every accepted fill, versions grow by exactly one per accepted transition,
// and a completed order is FILLED no matter how the fills were sliced.
func TestProperty_FillAccountingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quantity := rapid.Int64Range(2, 1_000_000).Draw(t, "quantity")

		order := newTestOrder(models.StatusWorking)
		order.Quantity = decimal.NewFromInt(quantity)
		order.RemainingQuantity = decimal.NewFromInt(quantity)

		fills := rapid.IntRange(1, 12).Draw(t, "fills")
		version := order.Version

		for i := 0; i < fills; i++ {
			remaining := order.RemainingQuantity.IntPart()
			if remaining == 0 {
				break
			}

			fill := rapid.Int64Range(1, remaining).Draw(t, "fill")
			price := decimal.NewFromInt(rapid.Int64Range(1, 200).Draw(t, "price"))

			target := models.StatusPartialFill
			if fill == remaining {
				target = models.StatusFilled
			}

			_, err := apply(order, target, TransitionOptions{
				FillQuantity: decimal.NewFromInt(fill),
				FillPrice:    price,
			}, time.Now())
			if err != nil {
				t.Fatalf("fill %d of %d rejected: %v", fill, remaining, err)
			}

			if !order.FilledQuantity.Add(order.RemainingQuantity).Equal(order.Quantity) {
				t.Fatalf("invariant broken: filled=%s remaining=%s quantity=%s",
					order.FilledQuantity, order.RemainingQuantity, order.Quantity)
			}

			version++
			if order.Version != version {
				t.Fatalf("version jumped: want %d got %d", version, order.Version)
			}
		}

		if order.RemainingQuantity.IsZero() && order.Status != models.StatusFilled {
			t.Fatalf("complete order not FILLED, got %s", order.Status)
		}
	})
}

// Property: a rejected transition never mutates the order.
func TestProperty_RejectedTransitionIsNoop(t *testing.T) {
	statuses := []models.OrderStatus{
		models.StatusPending, models.StatusValidated, models.StatusRejected,
		models.StatusHeld, models.StatusWorking, models.StatusPartialFill,
		models.StatusFilled, models.StatusCancelled, models.StatusExpired,
		models.StatusDoneForDay,
	}

	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(statuses).Draw(t, "from")
		to := rapid.SampledFrom(statuses).Draw(t, "to")

		order := newTestOrder(from)
		if from == models.StatusPartialFill {
			order.FilledQuantity = decimal.NewFromInt(100)
			order.RemainingQuantity = decimal.NewFromInt(900)
		}

		before := *order

		_, err := apply(order, to, TransitionOptions{}, time.Now())
		if err == nil {
			return
		}

		if order.Status != before.Status || order.Version != before.Version ||
			!order.FilledQuantity.Equal(before.FilledQuantity) ||
			!order.RemainingQuantity.Equal(before.RemainingQuantity) {
			t.Fatalf("rejected %s -> %s mutated the order", from, to)
		}
	})
}
