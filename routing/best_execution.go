package routing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

// BestExecution greedily fills from the best-priced valid quotes until the
// order's remaining quantity is exhausted.
type BestExecution struct{}

func (BestExecution) Name() types.StrategyKind {
	return types.StrategyBestExecution
}

func (BestExecution) Allocate(order *models.Order, quotes []Quote, now time.Time) StrategyResult {
	started := time.Now()

	candidates := validQuotes(order, quotes, now)
	sortByPriceForSide(candidates, order.Side)

	decisions := make([]RoutingDecision, 0, len(candidates))
	remaining := order.RemainingQuantity
	total := decimal.Zero
	best := decimal.Zero

	for _, q := range candidates {
		if !remaining.IsPositive() {
			break
		}

		allocated := decimal.Min(remaining, q.AvailableQuantity)

		decisions = append(decisions, RoutingDecision{
			ProviderID: q.ProviderID,
			Quantity:   allocated,
			Price:      q.Price,
			Rank:       len(decisions) + 1,
		})

		remaining = remaining.Sub(allocated)
		total = total.Add(allocated)
	}

	if len(decisions) > 0 {
		best = decisions[0].Price
	}

	return StrategyResult{
		Decisions:     decisions,
		TotalQuantity: total,
		BestPrice:     best,
		Elapsed:       time.Since(started),
	}
}
