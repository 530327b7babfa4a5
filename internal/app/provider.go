package app

import (
	"github.com/riskibarqy/cricket-fantasy/external/cricketdata"
	"github.com/riskibarqy/cricket-fantasy/external/offline"
	"github.com/riskibarqy/cricket-fantasy/internal/config"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/resilience"
)

func newProviderClient(cfg config.Config, logger *logging.Logger) provider.Client {
	switch cfg.Provider {
	case config.ProviderCricketData:
		logger.Info("using cricketdata provider", "base_url", cfg.CricketDataBaseURL)
		return cricketdata.NewClient(cricketdata.ClientConfig{
			BaseURL:           cfg.CricketDataBaseURL,
			APIKey:            cfg.CricketDataAPIKey,
			Timeout:           cfg.CricketDataTimeout,
			MaxRetries:        cfg.CricketDataMaxRetries,
			RequestsPerSecond: cfg.CricketDataRequestsPerSecond,
			Burst:             cfg.CricketDataBurst,
			Logger:            logger,
			CircuitBreaker: resilience.NormalizeCircuitBreakerConfig(resilience.CircuitBreakerConfig{
				Enabled:          cfg.CricketDataCircuitEnabled,
				FailureThreshold: cfg.CricketDataCircuitFailureCount,
				OpenTimeout:      cfg.CricketDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CricketDataCircuitHalfOpenMax,
			}),
		})
	default:
		logger.Info("using offline provider", "daily_limit", cfg.OfflineDailyLimit)
		return offline.NewClient(offline.Config{DailyLimit: cfg.OfflineDailyLimit})
	}
}
