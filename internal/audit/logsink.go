package audit

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// rotateThresholdBytes is the size at which LogSink gzip-rotates its
// underlying file rather than letting it grow unbounded.
const rotateThresholdBytes = 64 * 1024 * 1024

// LogSink is the default audit.Sink: a single mutex serializes every
// write to a *zap.Logger, which is what actually gives the event stream
// its total order — the matching core itself makes no ordering
// guarantee beyond the order it calls Sink methods in.
//
// Every record additionally carries a per-process SeqNo (assigned at the
// moment of serialization, not at the moment the core decided to emit)
// and the EngineRunID minted once for this process, so a reader of this
// sink's output can tell which run and in which order a record was
// written even across process restarts. Records published by NatsSink
// carry the run id but no SeqNo.
type LogSink struct {
	mu       sync.Mutex
	logger   *zap.Logger
	path     string
	file     *os.File
	seq      uint64
	runID    string
	maxBytes int64
}

// NewLogSink opens (or creates) path for append. Every record is logged
// through logger, and a short seq/run-id/kind line per record is appended
// to the file. If path is empty, records are written only through logger
// (useful for tests and for stdout-only deployments).
func NewLogSink(path string, logger *zap.Logger) (*LogSink, error) {
	s := &LogSink{
		logger:   logger,
		path:     path,
		runID:    ksuid.New().String(),
		maxBytes: rotateThresholdBytes,
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		s.file = f
	}
	return s, nil
}

func (s *LogSink) OrderAdded(e OrderAdded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := atomic.AddUint64(&s.seq, 1)
	s.logger.Info("order_added",
		zap.Uint64("seq", seq),
		zap.String("run_id", s.runID),
		zap.Uint32("id", e.ID),
		zap.String("instrument", e.Instrument),
		zap.Uint32("price", e.Price),
		zap.Uint32("count", e.Count),
		zap.Bool("is_sell", e.IsSell),
		zap.Int64("ts", e.Timestamp),
	)
	s.appendLineLocked("added", seq)
}

func (s *LogSink) OrderExecuted(e OrderExecuted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := atomic.AddUint64(&s.seq, 1)
	s.logger.Info("order_executed",
		zap.Uint64("seq", seq),
		zap.String("run_id", s.runID),
		zap.Uint32("resting_id", e.RestingID),
		zap.Uint32("incoming_id", e.IncomingID),
		zap.Uint32("execution_id", e.ExecutionID),
		zap.Uint32("price", e.Price),
		zap.Uint32("qty", e.Qty),
		zap.Int64("ts", e.Timestamp),
	)
	s.appendLineLocked("executed", seq)
}

func (s *LogSink) OrderDeleted(e OrderDeleted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := atomic.AddUint64(&s.seq, 1)
	s.logger.Info("order_deleted",
		zap.Uint64("seq", seq),
		zap.String("run_id", s.runID),
		zap.Uint32("id", e.ID),
		zap.Bool("accepted", e.Accepted),
		zap.Int64("ts", e.Timestamp),
	)
	s.appendLineLocked("deleted", seq)
}

// appendLineLocked is a best-effort durable trace of the emitted record
// to s.file, independent of whatever zap encoder/sink the caller
// configured for logger. Callers always hold s.mu.
func (s *LogSink) appendLineLocked(kind string, seq uint64) {
	if s.file == nil {
		return
	}
	line := fmt.Sprintf("%d\t%s\t%s\n", seq, s.runID, kind)
	if _, err := s.file.WriteString(line); err != nil {
		s.logger.Warn("audit log write failed", zap.Error(err))
		return
	}
	if info, err := s.file.Stat(); err == nil && info.Size() > s.maxBytes {
		s.rotateLocked()
	}
}

// rotateLocked gzips the current file to path+".<ksuid>.gz" and truncates
// the live file.
func (s *LogSink) rotateLocked() {
	if s.file == nil {
		return
	}
	if err := s.file.Close(); err != nil {
		s.logger.Warn("audit log rotate close failed", zap.Error(err))
		return
	}
	rotated := s.path + "." + ksuid.New().String() + ".gz"
	if err := gzipFile(s.path, rotated); err != nil {
		s.logger.Warn("audit log rotate compress failed", zap.Error(err))
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		s.logger.Warn("audit log rotate reopen failed", zap.Error(err))
		return
	}
	s.file = f
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	defer gw.Close()

	_, err = io.Copy(gw, in)
	return err
}

// RunID returns the KSUID minted for this process's audit stream.
func (s *LogSink) RunID() string { return s.runID }
