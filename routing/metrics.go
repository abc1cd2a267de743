package routing

import (
	"time"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/models"
	"github.com/omxtrade/omx/types"
)

type RoutingMetric struct {
	Time         time.Time `influx:"time"`
	Instrument   string    `influx:"instrument,tag"`
	Strategy     string    `influx:"strategy,tag"`
	Providers    int       `influx:"providers"`
	Decisions    int       `influx:"decisions"`
	Placed       int       `influx:"placed"`
	AllocatedQty float64   `influx:"allocated_qty"`
	ElapsedMs    float64   `influx:"elapsed_ms"`
}

func WriteRoutingMetric(order *models.Order, strategy types.StrategyKind, allocation StrategyResult, providers int, placed int, elapsed time.Duration) {
	if config.InfluxHelper == nil {
		return
	}

	allocated, _ := allocation.TotalQuantity.Float64()

	metric := RoutingMetric{
		Time:         time.Now(),
		Instrument:   order.InstrumentID,
		Strategy:     strategy,
		Providers:    providers,
		Decisions:    len(allocation.Decisions),
		Placed:       placed,
		AllocatedQty: allocated,
		ElapsedMs:    float64(elapsed.Microseconds()) / 1000.0,
	}

	if err := config.InfluxHelper.UseMeasurement("routing").WritePoint(metric); err != nil {
		config.Logger.Errorf("Failed to write routing metric: %v", err)
	}
}
