package routing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

// ProportionalSplit allocates each valid quote its floored share of the
// target quantity and hands the rounding remainder to the best-priced quote,
// so the decisions always sum exactly to the target.
type ProportionalSplit struct{}

func (ProportionalSplit) Name() types.StrategyKind {
	return types.StrategyProportionalSplit
}

func (ProportionalSplit) Allocate(order *models.Order, quotes []Quote, now time.Time) StrategyResult {
	started := time.Now()

	candidates := validQuotes(order, quotes, now)
	sortByPriceForSide(candidates, order.Side)

	result := StrategyResult{
		Decisions:     make([]RoutingDecision, 0, len(candidates)),
		TotalQuantity: decimal.Zero,
		BestPrice:     decimal.Zero,
	}

	available := decimal.Zero
	for _, q := range candidates {
		available = available.Add(q.AvailableQuantity)
	}

	if !available.IsPositive() {
		result.Elapsed = time.Since(started)
		return result
	}

	// Never split more than the market offers.
	target := decimal.Min(order.RemainingQuantity, available)
	if !target.IsPositive() {
		result.Elapsed = time.Since(started)
		return result
	}

	allocated := decimal.Zero
	for _, q := range candidates {
		share := target.Mul(q.AvailableQuantity).Div(available).Floor()

		result.Decisions = append(result.Decisions, RoutingDecision{
			ProviderID: q.ProviderID,
			Quantity:   share,
			Price:      q.Price,
			Rank:       len(result.Decisions) + 1,
		})

		allocated = allocated.Add(share)
	}

	remainder := target.Sub(allocated)
	if remainder.IsPositive() {
		result.Decisions[0].Quantity = result.Decisions[0].Quantity.Add(remainder)
		allocated = allocated.Add(remainder)
	}

	// Flooring can zero out a tiny share; such decisions carry nothing.
	kept := result.Decisions[:0]
	for _, d := range result.Decisions {
		if d.Quantity.IsPositive() {
			d.Rank = len(kept) + 1
			kept = append(kept, d)
		}
	}
	result.Decisions = kept

	result.TotalQuantity = allocated
	result.BestPrice = result.Decisions[0].Price
	result.Elapsed = time.Since(started)

	return result
}
