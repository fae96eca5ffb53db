package matching

import "sync"

// livenessMap is the process-wide order_id -> ended registry shared by
// every instrument. Callers may hold one or both queue locks while they
// consult or mutate it: the ordering rule throughout this package is
// queue lock before map lock, map lock released before a new queue lock
// is taken.
type livenessMap struct {
	mu    sync.Mutex
	ended map[uint32]bool
}

func newLivenessMap() *livenessMap {
	return &livenessMap{ended: make(map[uint32]bool)}
}

// register marks an id as live (present, not ended). Called once, at the
// moment an order is pushed onto its book under the joint lock of
// tryAddResting.
func (m *livenessMap) register(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended[id] = false
}

// isEnded reports the current liveness of id. cancel handles an absent
// id separately; for heap lazy-deletion purposes an absent id is treated
// as ended so a stray entry is reaped.
func (m *livenessMap) isEnded(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ended, present := m.ended[id]
	return !present || ended
}

// endIfLive flips a present, not-yet-ended id to ended and returns true;
// returns false if the id was absent or already ended. This is the single
// atomic test-and-set primitive behind popTopIfLiveLocked
// (replaceTopIfLiveLocked only reads liveness via isEnded); at most one caller ever observes endIfLive return true for a given id,
// which is what keeps a terminal event for that id unique.
func (m *livenessMap) endIfLive(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ended, present := m.ended[id]
	if !present || ended {
		return false
	}
	m.ended[id] = true
	return true
}

// cancel is the only entry point that may observe and act on an *absent*
// id (a cancel of an id that never rested).
func (m *livenessMap) cancel(id uint32) (accepted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ended, present := m.ended[id]
	if !present || ended {
		return false
	}
	m.ended[id] = true
	return true
}
