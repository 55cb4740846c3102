// Package notify selects the analysis status notifier from configuration.
package notify

import (
	"fmt"

	"talentmatch/internal/config"
	"talentmatch/internal/notify/noop"
	"talentmatch/internal/notify/rabbitmq"
	"talentmatch/internal/port"
)

// New returns the notifier named by cfg.Provider. An empty provider is noop.
func New(cfg *config.NotifyConfig) (port.AnalysisNotifier, error) {
	switch cfg.Provider {
	case "", "noop":
		return noop.NewNotifier(), nil
	case "rabbitmq":
		return rabbitmq.NewNotifier(cfg.URL, cfg.Exchange)
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}
