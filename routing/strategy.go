package routing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

type StrategyResult struct {
	Decisions     []RoutingDecision `json:"decisions"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	BestPrice     decimal.Decimal   `json:"best_price"`
	Elapsed       time.Duration     `json:"elapsed"`
}

// Strategy implementations are pure functions of (order, quotes, now); they
// share no state so a routing decision is reproducible from its inputs. The
// implementation set is closed: BestExecution, ProportionalSplit and
// SequentialFallback.
type Strategy interface {
	Name() types.StrategyKind
	Allocate(order *models.Order, quotes []Quote, now time.Time) StrategyResult
}

func StrategyFor(kind types.StrategyKind) (Strategy, error) {
	switch kind {
	case types.StrategyBestExecution:
		return BestExecution{}, nil
	case types.StrategyProportionalSplit:
		return ProportionalSplit{}, nil
	case types.StrategySequentialFallback:
		return SequentialFallback{}, nil
	default:
		return nil, fmt.Errorf("routing.strategy.unknown: %s", kind)
	}
}

func validQuotes(order *models.Order, quotes []Quote, now time.Time) []Quote {
	valid := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.Valid(order, now) {
			valid = append(valid, q)
		}
	}

	return valid
}

// sortByPriceForSide orders quotes best-first for the order's side: ascending
// price for buys, descending for sells. Equal prices fall back to ascending
// provider id so the ordering is deterministic.
func sortByPriceForSide(quotes []Quote, side types.OrderSide) {
	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Price.Equal(quotes[j].Price) {
			return quotes[i].ProviderID < quotes[j].ProviderID
		}

		if side == types.SideBuy {
			return quotes[i].Price.LessThan(quotes[j].Price)
		}

		return quotes[i].Price.GreaterThan(quotes[j].Price)
	})
}
