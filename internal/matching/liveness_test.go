package matching

import "testing"

func TestLivenessMapRegisterThenEndIfLive(t *testing.T) {
	m := newLivenessMap()
	m.register(1)

	if m.isEnded(1) {
		t.Fatal("freshly registered id should not be ended")
	}
	if !m.endIfLive(1) {
		t.Fatal("endIfLive should succeed on a live id")
	}
	if !m.isEnded(1) {
		t.Fatal("id should be ended after endIfLive")
	}
	if m.endIfLive(1) {
		t.Fatal("endIfLive should not succeed twice on the same id")
	}
}

func TestLivenessMapCancelOfAbsentIDIsRejected(t *testing.T) {
	m := newLivenessMap()
	if m.cancel(42) {
		t.Fatal("cancel of an id that never registered should be rejected")
	}
}

func TestLivenessMapCancelIsAcceptedOnceThenRejected(t *testing.T) {
	m := newLivenessMap()
	m.register(7)

	if !m.cancel(7) {
		t.Fatal("first cancel of a live id should be accepted")
	}
	if m.cancel(7) {
		t.Fatal("second cancel of the same id should be rejected")
	}
}

func TestLivenessMapIsEndedTreatsAbsentIDAsEnded(t *testing.T) {
	m := newLivenessMap()
	if !m.isEnded(123) {
		t.Fatal("an id that was never registered should be treated as ended")
	}
}
