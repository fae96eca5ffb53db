package transport

import (
	"net"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Server owns the raw TCP listener and hands each accepted connection to
// a bounded goroutine pool rather than an unbounded `go session.Run()` —
// a connection storm degrades to queued admission in the transport
// layer, never to unbounded goroutine growth, and never by introducing a
// wait inside the matching core itself.
type Server struct {
	listener  net.Listener
	pool      *ants.Pool
	router    Dispatcher
	logger    *zap.Logger
	rateRPS   float64
	rateBurst int
}

// NewServer binds addr and builds a worker pool of the given size.
func NewServer(addr string, poolSize int, rateRPS float64, rateBurst int, router Dispatcher, logger *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(poolSize, ants.WithPanicHandler(func(i interface{}) {
		logger.Error("session worker panicked", zap.Any("recover", i))
	}))
	if err != nil {
		ln.Close()
		return nil, err
	}
	return &Server{
		listener:  ln,
		pool:      pool,
		router:    router,
		logger:    logger,
		rateRPS:   rateRPS,
		rateBurst: rateBurst,
	}, nil
}

// Serve accepts connections until the listener is closed, submitting each
// to the worker pool. A pool-submission failure (pool closed, or the
// blocking-task queue is full) closes that one connection rather than
// spawning an unbounded goroutine around the pool.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		sess := NewSession(conn, s.router, s.rateRPS, s.rateBurst, s.logger)
		if err := s.pool.Submit(sess.Run); err != nil {
			s.logger.Warn("session admission rejected", zap.Error(err))
			conn.Close()
		}
	}
}

// Addr returns the bound listener address, useful when ListenAddr uses
// port 0 in tests.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Close shuts the listener and worker pool down.
func (s *Server) Close() error {
	s.pool.Release()
	return s.listener.Close()
}
