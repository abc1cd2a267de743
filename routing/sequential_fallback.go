package routing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

// SequentialFallback sends the entire remaining quantity to the first valid
// provider, preferring the order's preference list before price. At most one
// decision is produced.
type SequentialFallback struct{}

func (SequentialFallback) Name() types.StrategyKind {
	return types.StrategySequentialFallback
}

func (SequentialFallback) Allocate(order *models.Order, quotes []Quote, now time.Time) StrategyResult {
	started := time.Now()

	candidates := validQuotes(order, quotes, now)
	sortByPriceForSide(candidates, order.Side)

	preference := make(map[string]int, len(order.PreferredProviders))
	for i, provider_id := range order.PreferredProviders {
		preference[provider_id] = i
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, has_pi := preference[candidates[i].ProviderID]
		pj, has_pj := preference[candidates[j].ProviderID]

		if has_pi && has_pj {
			return pi < pj
		}

		return has_pi && !has_pj
	})

	result := StrategyResult{
		Decisions:     make([]RoutingDecision, 0, 1),
		TotalQuantity: decimal.Zero,
		BestPrice:     decimal.Zero,
	}

	if len(candidates) > 0 && order.RemainingQuantity.IsPositive() {
		first := candidates[0]

		result.Decisions = append(result.Decisions, RoutingDecision{
			ProviderID: first.ProviderID,
			Quantity:   order.RemainingQuantity,
			Price:      first.Price,
			Rank:       1,
		})

		result.TotalQuantity = order.RemainingQuantity
		result.BestPrice = first.Price
	}

	result.Elapsed = time.Since(started)

	return result
}
