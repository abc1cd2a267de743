package engines

import (
	"time"

	"github.com/omxtrade/omx/breaker"
	"github.com/omxtrade/omx/config"
)

const breakerSweepInterval = time.Minute

// StartBreakerSweeper periodically drops idle circuit entries and mirrors
// the registry snapshot into Redis so operators can watch provider health.
func StartBreakerSweeper(registry *breaker.Registry) {
	go func() {
		ticker := time.NewTicker(breakerSweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if swept := registry.Sweep(breaker.DefaultIdleTimeout); swept > 0 {
				config.Logger.Infof("Swept %d idle circuit entries", swept)
			}

			for _, status := range registry.Snapshot() {
				if err := config.Redis.SetKey("omx:breaker:"+status.ProviderID, status, breaker.DefaultIdleTimeout); err != nil {
					config.Logger.Errorf("Failed to mirror circuit status for %s: %v", status.ProviderID, err)
				}
			}
		}
	}()
}
