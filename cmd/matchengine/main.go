package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tradsys/matchcore/internal/adminapi"
	"github.com/tradsys/matchcore/internal/audit"
	"github.com/tradsys/matchcore/internal/audit/store"
	"github.com/tradsys/matchcore/internal/config"
	"github.com/tradsys/matchcore/internal/matching"
	"github.com/tradsys/matchcore/internal/metrics"
	"github.com/tradsys/matchcore/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newMetrics,
			newSink,
		),
		matching.Module,
		fx.Invoke(runServers),
	)
	app.Run()
}

func newConfig() (*config.Config, error) {
	return config.Load("matchengine.yaml")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Logging.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// newSink assembles the audit fan-out described by cfg: a local LogSink
// always runs, a NatsSink joins in when URLs are configured, a Postgres
// Store joins in when a DSN is configured, and metrics always observes.
func newSink(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (audit.Sink, error) {
	logSink, err := audit.NewLogSink(cfg.Audit.LocalPath, logger)
	if err != nil {
		return nil, err
	}
	sinks := []audit.Sink{logSink, metrics.NewSink(m)}

	if len(cfg.Audit.NatsURLs) > 0 {
		natsSink, err := audit.NewNatsSink(audit.NatsSinkConfig{
			URLs:           cfg.Audit.NatsURLs,
			Subject:        cfg.Audit.NatsSubject,
			RunID:          logSink.RunID(),
			ConnectTimeout: 5 * time.Second,
		}, logger)
		if err != nil {
			logger.Warn("nats audit sink unavailable, continuing without it", zap.Error(err))
		} else {
			sinks = append(sinks, natsSink)
		}
	}

	if cfg.Audit.PostgresDSN != "" {
		s, err := store.Open(cfg.Audit.PostgresDSN, logSink.RunID())
		if err != nil {
			logger.Warn("postgres audit store unavailable, continuing without it", zap.Error(err))
		} else {
			sinks = append(sinks, s)
		}
	}

	return audit.NewMultiSink(sinks...), nil
}

// runServers starts the TCP matching listener, the admin HTTP surface,
// and a background loop that republishes book-depth gauges from router
// snapshots. All three run for the lifetime of the fx app.
func runServers(lc fx.Lifecycle, cfg *config.Config, router *matching.Router, m *metrics.Metrics, logger *zap.Logger) error {
	srv, err := transport.NewServer(cfg.Server.ListenAddr, cfg.Server.WorkerPoolSize,
		cfg.Server.SessionRateRPS, cfg.Server.SessionRateBurst, router, logger)
	if err != nil {
		return err
	}

	admin, err := adminapi.NewServer(adminapi.Config{
		ListenAddr:   cfg.Admin.ListenAddr,
		JWTSecret:    cfg.Admin.JWTSecret,
		CORSOrigins:  cfg.Admin.CORSOrigins,
		RateLimitRPS: cfg.Admin.RateLimitRPS,
	}, router, logger)
	if err != nil {
		srv.Close()
		return err
	}

	stopDepthLoop := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Serve(); err != nil {
					logger.Warn("matching server stopped", zap.Error(err))
				}
			}()
			go func() {
				if err := admin.Run(); err != nil {
					logger.Warn("admin server stopped", zap.Error(err))
				}
			}()
			go publishBookDepth(router, m, stopDepthLoop)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stopDepthLoop)
			return srv.Close()
		},
	})

	return nil
}

// publishBookDepth periodically copies each instrument's resting depth
// into the admin API's Prometheus gauges until stop is closed.
func publishBookDepth(router *matching.Router, m *metrics.Metrics, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, snap := range router.Snapshot() {
				m.BookDepth.WithLabelValues(snap.Symbol, "buy").Set(float64(snap.BuyDepth))
				m.BookDepth.WithLabelValues(snap.Symbol, "sell").Set(float64(snap.SellDepth))
			}
		}
	}
}
