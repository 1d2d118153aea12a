package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	clock := NewFakeClock()
	start := clock.Now()

	clock.Advance(1500 * time.Millisecond)

	if got := clock.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s elapsed, got %v", got)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clock := NewFakeClock()
	target := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

	clock.Set(target)

	if !clock.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clock.Now())
	}
}
