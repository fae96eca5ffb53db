// Package store provides an optional historical read-model over the audit
// stream: a queryable log of already-emitted events, kept strictly
// downstream of the matching core. Each event is inserted synchronously,
// inside the Sink call that delivers it. It is never consulted by the
// match loop and never used to recover matching state — it only makes
// the stream queryable after the fact.
package store

import (
	"time"

	"github.com/tradsys/matchcore/internal/audit"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Record is the GORM model for one persisted audit event.
type Record struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"index"`
	Kind        string `gorm:"index"`
	OrderID     uint32 `gorm:"index"`
	Instrument  string `gorm:"index"`
	Price       uint32
	Qty         uint32
	Accepted    bool
	ExecutionID uint32
	Timestamp   int64
	CreatedAt   time.Time
}

// Store persists audit events for later query and implements audit.Sink
// so it can be wired into a MultiSink alongside LogSink/NatsSink.
type Store struct {
	db    *gorm.DB
	runID string
}

// Open connects to Postgres via dsn and migrates the Record table.
func Open(dsn string, runID string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Store{db: db, runID: runID}, nil
}

func (s *Store) OrderAdded(e audit.OrderAdded) {
	s.db.Create(&Record{
		RunID: s.runID, Kind: "added", OrderID: e.ID, Instrument: e.Instrument,
		Price: e.Price, Qty: e.Count, Timestamp: e.Timestamp,
	})
}

func (s *Store) OrderExecuted(e audit.OrderExecuted) {
	s.db.Create(&Record{
		RunID: s.runID, Kind: "executed", OrderID: e.RestingID,
		ExecutionID: e.ExecutionID, Price: e.Price, Qty: e.Qty, Timestamp: e.Timestamp,
	})
}

func (s *Store) OrderDeleted(e audit.OrderDeleted) {
	s.db.Create(&Record{
		RunID: s.runID, Kind: "deleted", OrderID: e.ID,
		Accepted: e.Accepted, Timestamp: e.Timestamp,
	})
}

// ByOrderID returns every persisted record for a given order id, in
// emission order, for historical/audit queries.
func (s *Store) ByOrderID(orderID uint32) ([]Record, error) {
	var out []Record
	err := s.db.Where("order_id = ?", orderID).Order("created_at asc").Find(&out).Error
	return out, err
}

// ByInstrument returns recent records for an instrument, most recent
// first, bounded by limit.
func (s *Store) ByInstrument(instrument string, limit int) ([]Record, error) {
	var out []Record
	err := s.db.Where("instrument = ?", instrument).Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}
