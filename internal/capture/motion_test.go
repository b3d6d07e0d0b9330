package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionGate_FirstFramePrimesBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	motion, percent := g.Detect(&frame)
	if motion {
		t.Error("first frame should never report motion")
	}
	if percent != 0 {
		t.Errorf("first frame change percent = %f, want 0", percent)
	}
}

func TestMotionGate_IdenticalFramesNoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame1 := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	g.Detect(&frame1)
	motion, percent := g.Detect(&frame2)

	if motion {
		t.Errorf("identical frames reported motion (%f%% changed)", percent)
	}
}

func TestMotionGate_ChangedFrameReportsMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	black := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer black.Close()

	white := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g.Detect(&black)
	motion, percent := g.Detect(&white)

	if !motion {
		t.Errorf("full-frame change not detected (%f%% changed)", percent)
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	black := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer black.Close()

	white := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g.Detect(&black)
	g.Reset()

	// After reset the next frame primes a new baseline, so even a very
	// different frame must not report motion.
	motion, _ := g.Detect(&white)
	if motion {
		t.Error("frame after Reset should prime the baseline, not report motion")
	}
}
