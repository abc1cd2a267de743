package lifecycle

import (
	"encoding/json"

	"github.com/omxtrade/omx/config"
	"github.com/omxtrade/omx/models"
)

// PublishEvent pushes one lifecycle event to the bus. Fire and forget:
// delivery guarantees belong to the sink, a publish error is only logged.
func PublishEvent(event string, order *models.Order) {
	if config.Nats == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"version": order.Version,
		"order":   order.ToJSON(),
	})
	if err != nil {
		config.Logger.Errorf("Failed to marshal lifecycle event %s: %v", event, err)
		return
	}

	if err := config.Nats.Publish("omx.orders."+event, payload); err != nil {
		config.Logger.Errorf("Failed to publish lifecycle event %s: %v", event, err)
	}
}
