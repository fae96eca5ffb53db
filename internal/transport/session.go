package transport

import (
	"context"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/google/uuid"
	"github.com/tradsys/matchcore/internal/matching"
)

// Dispatcher is the subset of matching.Router a Session needs. Declared
// as an interface so session tests can substitute a recording fake.
type Dispatcher interface {
	Dispatch(matching.ClientCommand)
}

// Session is one accepted connection: it owns the read loop that decodes
// a framed sequence of wire records and hands each decoded ClientCommand
// to the router. It blocks on the rate limiter, on the next read, and on
// the synchronous Dispatch call into the matching core.
type Session struct {
	conn      net.Conn
	codec     Codec
	router    Dispatcher
	limiter   *rate.Limiter
	logger    *zap.Logger
	sessionID string
}

// NewSession wraps an accepted connection. rateRPS/rateBurst of 0 disables
// throttling.
func NewSession(conn net.Conn, router Dispatcher, rateRPS float64, rateBurst int, logger *zap.Logger) *Session {
	var limiter *rate.Limiter
	if rateRPS > 0 && rateBurst > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateRPS), rateBurst)
	}
	return &Session{
		conn:      conn,
		router:    router,
		limiter:   limiter,
		logger:    logger,
		sessionID: uuid.NewString(),
	}
}

// Run decodes frames until EOF (clean shutdown) or a framing error
// (logged diagnostic, then the loop — and only this session — ends).
func (s *Session) Run() {
	defer s.conn.Close()
	log := s.logger.With(zap.String("session_id", s.sessionID), zap.String("remote", s.conn.RemoteAddr().String()))
	log.Info("session started")

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(context.Background()); err != nil {
				log.Warn("session rate limiter wait failed", zap.Error(err))
				return
			}
		}

		cmd, err := s.codec.Decode(s.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("session closed cleanly")
				return
			}
			log.Warn("session framing error, terminating", zap.Error(err))
			return
		}

		s.router.Dispatch(cmd)
	}
}
