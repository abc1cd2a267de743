package routing

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/models"
)

// quoteComparator orders normalized quotes by price, then provider id.
func quoteComparator(a, b interface{}) int {
	this := a.(*Quote)
	that := b.(*Quote)

	if cmp := this.Price.Cmp(that.Price); cmp != 0 {
		return cmp
	}

	switch {
	case this.ProviderID < that.ProviderID:
		return -1
	case this.ProviderID > that.ProviderID:
		return 1
	default:
		return 0
	}
}

// QuoteAggregator fans one quote request out to every healthy provider and
// returns the surviving quotes in deterministic (price, provider) order.
type QuoteAggregator struct {
	gateway  ProviderGateway
	registry *breaker.Registry
}

func NewQuoteAggregator(gateway ProviderGateway, registry *breaker.Registry) *QuoteAggregator {
	return &QuoteAggregator{
		gateway:  gateway,
		registry: registry,
	}
}

// Collect requests quotes from the given providers in parallel under the
// caller's deadline. A provider that fails is recorded against its circuit
// breaker and excluded; a quote already expired at evaluation time is
// dropped silently.
func (a *QuoteAggregator) Collect(ctx context.Context, order *models.Order, provider_ids []string) []Quote {
	var wg sync.WaitGroup
	collected := make(chan *Quote, len(provider_ids))

	for _, provider_id := range provider_ids {
		wg.Add(1)

		go func(provider_id string) {
			defer wg.Done()

			quote, err := a.gateway.GetQuote(ctx, provider_id, order.InstrumentID, order.Side, order.RemainingQuantity)
			if err != nil {
				a.registry.RecordFailure(provider_id, err.Error())
				config.Logger.Warnf("Quote request to %s failed: %v", provider_id, err)
				return
			}

			if quote == nil {
				return
			}

			a.registry.RecordSuccess(provider_id)
			quote.ProviderID = provider_id
			collected <- quote
		}(provider_id)
	}

	wg.Wait()
	close(collected)

	now := time.Now()
	tree := redblacktree.NewWith(quoteComparator)

	for quote := range collected {
		if quote.Expired(now) {
			continue
		}

		tree.Put(quote, struct{}{})
	}

	quotes := make([]Quote, 0, tree.Size())
	for _, key := range tree.Keys() {
		quotes = append(quotes, *key.(*Quote))
	}

	return quotes
}
