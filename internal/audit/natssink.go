package audit

import (
	"encoding/json"
	"sync"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NatsSinkConfig configures the optional NATS fan-out of the audit
// stream. It is an alternate transport for the single audit stream the
// core already produces, not a new market-data feed.
type NatsSinkConfig struct {
	URLs           []string
	Subject        string
	RunID          string
	ConnectTimeout time.Duration
}

// NatsSink publishes the same events LogSink writes locally to a NATS
// subject, as JSON tagged with the run id and event kind (without
// LogSink's SeqNo), wrapped in a circuit breaker so a broker outage
// degrades to "skip the publish" rather than blocking a caller.
type NatsSink struct {
	mu      sync.Mutex
	conn    *nats.Conn
	subject string
	runID   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewNatsSink dials the configured NATS servers and returns a sink; nil,
// err is returned if the initial connection fails, leaving the caller
// free to fall back to LogSink alone.
func NewNatsSink(cfg NatsSinkConfig, logger *zap.Logger) (*NatsSink, error) {
	conn, err := nats.Connect(
		joinOrDefault(cfg.URLs),
		nats.Timeout(orDefault(cfg.ConnectTimeout, 5*time.Second)),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.Name("matchcore-audit"),
	)
	if err != nil {
		return nil, err
	}

	settings := gobreaker.Settings{
		Name:        "audit-nats-publish",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("audit nats circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &NatsSink{
		conn:    conn,
		subject: cfg.Subject,
		runID:   cfg.RunID,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}, nil
}

type wireRecord struct {
	RunID string      `json:"run_id"`
	Kind  string      `json:"kind"`
	Event interface{} `json:"event"`
}

func (s *NatsSink) publish(kind string, event interface{}) {
	rec := wireRecord{RunID: s.runID, Kind: kind, Event: event}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("audit nats marshal failed", zap.Error(err))
		return
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return nil, s.conn.Publish(s.subject, payload)
	})
	if err != nil {
		s.logger.Warn("audit nats publish skipped", zap.Error(err))
	}
}

func (s *NatsSink) OrderAdded(e OrderAdded)       { s.publish("added", e) }
func (s *NatsSink) OrderExecuted(e OrderExecuted) { s.publish("executed", e) }
func (s *NatsSink) OrderDeleted(e OrderDeleted)   { s.publish("deleted", e) }

// Close drains and closes the underlying NATS connection.
func (s *NatsSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

func joinOrDefault(urls []string) string {
	if len(urls) == 0 {
		return nats.DefaultURL
	}
	out := urls[0]
	for _, u := range urls[1:] {
		out += "," + u
	}
	return out
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
