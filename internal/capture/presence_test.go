package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestPresenceDetector_Defaults(t *testing.T) {
	p := NewPresenceDetector(0, 0)
	defer p.Close()

	if p.minChange != DefaultChangePercent {
		t.Errorf("minChange = %f, want %f", p.minChange, DefaultChangePercent)
	}
	if p.idleAfter != DefaultIdleAfter {
		t.Errorf("idleAfter = %d, want %d", p.idleAfter, DefaultIdleAfter)
	}
	if p.Idle() {
		t.Error("fresh detector should not report idle")
	}
}

func TestPresenceDetector_StillScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPresenceDetector(1.0, 3)
	defer p.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	// Priming frame.
	active, change := p.Observe(&frame)
	if active || change != 0 {
		t.Errorf("priming frame: active=%v change=%f, want false 0", active, change)
	}

	// Identical frames: no activity, idle after the configured streak.
	for i := 0; i < 3; i++ {
		if active, change = p.Observe(&frame); active {
			t.Errorf("still frame %d reported active, change=%f", i, change)
		}
	}
	if !p.Idle() {
		t.Error("three still frames should report idle")
	}
}

func TestPresenceDetector_MovementResetsIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPresenceDetector(1.0, 2)
	defer p.Close()

	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()

	bright := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()
	bright.SetTo(gocv.NewScalar(255, 255, 255, 0))

	p.Observe(&dark)
	p.Observe(&dark)
	p.Observe(&dark)
	if !p.Idle() {
		t.Fatal("still frames should have gone idle")
	}

	active, change := p.Observe(&bright)
	if !active {
		t.Errorf("full-frame change not detected, change=%f", change)
	}
	if change < 50.0 {
		t.Errorf("change = %f, want > 50 for a full-frame flip", change)
	}
	if p.Idle() {
		t.Error("activity must clear the idle state")
	}
}

func TestPresenceDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPresenceDetector(1.0, 2)
	defer p.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p.Observe(&frame)
	if !p.primed {
		t.Fatal("detector should be primed after first frame")
	}

	p.Reset()
	if p.primed {
		t.Error("detector should not be primed after Reset")
	}
	if !p.prev.Empty() {
		t.Error("baseline frame should be released after Reset")
	}

	// The next frame primes again instead of diffing against stale data.
	if active, _ := p.Observe(&frame); active {
		t.Error("first frame after reset should not report activity")
	}
}

func TestPresenceDetector_NilFrame(t *testing.T) {
	p := NewPresenceDetector(1.0, 2)
	defer p.Close()

	if active, change := p.Observe(nil); active || change != 0 {
		t.Errorf("nil frame: active=%v change=%f, want false 0", active, change)
	}
}
