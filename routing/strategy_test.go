package routing

import (
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	yaml "gopkg.in/yaml.v2"

	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

type suiteStrategyTester struct {
	suite.Suite
}

type StrategyScenario struct {
	Name      string   `yaml:"name"`
	Strategy  string   `yaml:"strategy"`
	Side      string   `yaml:"side"`
	Quantity  string   `yaml:"quantity"`
	Limit     string   `yaml:"limit"`
	Preferred []string `yaml:"preferred"`
	Quotes    []string `yaml:"quotes"`
	Decisions []string `yaml:"decisions"`
	Total     string   `yaml:"total"`
	Best      string   `yaml:"best"`
}

func splitFields(raw string) []string {
	rawFields := strings.Split(raw, ",")
	fields := make([]string, 0, len(rawFields))
	for _, f := range rawFields {
		fields = append(fields, strings.TrimSpace(f))
	}

	return fields
}

func (sc *StrategyScenario) Order() *models.Order {
	quantity := decimal.RequireFromString(sc.Quantity)

	order := &models.Order{
		ID:                1,
		TenantID:          "acme",
		InstrumentID:      "EUR/USD",
		Side:              sc.Side,
		Kind:              types.KindMarket,
		TimeInForce:       types.TifGTC,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		StrategyKind:      sc.Strategy,
		Status:            models.StatusValidated,
	}

	if sc.Limit != "" {
		order.Kind = types.KindLimit
		order.Price = decimal.NewNullDecimal(decimal.RequireFromString(sc.Limit))
	}

	for _, provider_id := range sc.Preferred {
		order.PreferredProviders = append(order.PreferredProviders, provider_id)
	}

	return order
}

func (sc *StrategyScenario) QuoteSet(now time.Time) []Quote {
	quotes := make([]Quote, 0, len(sc.Quotes))

	for _, raw := range sc.Quotes {
		fields := splitFields(raw)

		quote := Quote{
			ProviderID:        fields[0],
			Price:             decimal.RequireFromString(fields[1]),
			AvailableQuantity: decimal.RequireFromString(fields[2]),
			ValidUntil:        now.Add(time.Minute),
		}

		if len(fields) >= 4 && fields[3] == "expired" {
			quote.ValidUntil = now.Add(-time.Minute)
		}

		quotes = append(quotes, quote)
	}

	return quotes
}

func (sc *StrategyScenario) Test(s *suiteStrategyTester) {
	s.T().Run(sc.Name, func(t *testing.T) {
		now := time.Now()
		order := sc.Order()
		quotes := sc.QuoteSet(now)

		strategy, err := StrategyFor(sc.Strategy)
		s.NoError(err)

		result := strategy.Allocate(order, quotes, now)

		s.Len(result.Decisions, len(sc.Decisions))
		for i, raw := range sc.Decisions {
			fields := splitFields(raw)

			s.Equal(fields[0], result.Decisions[i].ProviderID)
			s.True(result.Decisions[i].Quantity.Equal(decimal.RequireFromString(fields[1])),
				"decision %d quantity: want %s got %s", i, fields[1], result.Decisions[i].Quantity)
			s.True(result.Decisions[i].Price.Equal(decimal.RequireFromString(fields[2])))
			s.Equal(i+1, result.Decisions[i].Rank)
		}

		s.True(result.TotalQuantity.Equal(decimal.RequireFromString(sc.Total)),
			"total: want %s got %s", sc.Total, result.TotalQuantity)
		s.True(result.BestPrice.Equal(decimal.RequireFromString(sc.Best)))
	})
}

func (s *suiteStrategyTester) TestScenarios() {
	raw, err := ioutil.ReadFile("fixtures/strategies.yml")
	s.Require().NoError(err)

	var scenarios []StrategyScenario
	s.Require().NoError(yaml.Unmarshal(raw, &scenarios))

	for i := range scenarios {
		scenarios[i].Test(s)
	}
}

func (s *suiteStrategyTester) TestUnknownStrategyKind() {
	_, err := StrategyFor("twap")
	s.Error(err)
}

func (s *suiteStrategyTester) TestAllocateDoesNotMutateInputs() {
	now := time.Now()
	quantity := decimal.NewFromInt(1_000_000)

	order := &models.Order{
		Side:              types.SideBuy,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            models.StatusValidated,
	}

	quotes := []Quote{
		{ProviderID: "lp-a", Price: decimal.RequireFromString("1.0860"), AvailableQuantity: decimal.NewFromInt(500_000), ValidUntil: now.Add(time.Minute)},
		{ProviderID: "lp-b", Price: decimal.RequireFromString("1.0850"), AvailableQuantity: decimal.NewFromInt(500_000), ValidUntil: now.Add(time.Minute)},
	}

	first := BestExecution{}.Allocate(order, quotes, now)
	second := BestExecution{}.Allocate(order, quotes, now)

	s.Equal("lp-a", quotes[0].ProviderID, "quote slice order must survive allocation")
	s.True(order.RemainingQuantity.Equal(quantity))
	s.Len(second.Decisions, len(first.Decisions))
	for i := range first.Decisions {
		s.Equal(first.Decisions[i].ProviderID, second.Decisions[i].ProviderID)
		s.True(first.Decisions[i].Quantity.Equal(second.Decisions[i].Quantity))
	}
}

func TestStrategies(t *testing.T) {
	suite.Run(t, new(suiteStrategyTester))
}
