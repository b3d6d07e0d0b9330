// Package app wires the capture, detection, and recognition components into
// the running Mudra pipeline.
package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/recognize"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while no motion is seen.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active recognition.
	ActiveFPS = 15
	// IdleTimeout is how long after the last motion the pipeline drops back
	// to the idle rate.
	IdleTimeout = 2 * time.Second
)

// Config holds application configuration.
type Config struct {
	CameraID     int
	MotionThresh float64
}

// App owns the frame loop: camera in, recognition events out.
type App struct {
	config      Config
	camera      capture.Camera
	motion      *capture.MotionGate
	detector    detector.Detector
	coordinator *recognize.Coordinator
	logger      *zap.Logger

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
}

// New creates an App around the given coordinator. The landmark detector is
// the MediaPipe bridge when available, falling back to the mock detector so
// the rest of the system stays runnable without it.
func New(config Config, coordinator *recognize.Coordinator, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // 1% pixel change
	}

	a := &App{
		config:      config,
		camera:      capture.NewCamera(config.CameraID),
		motion:      capture.NewMotionGate(config.MotionThresh),
		coordinator: coordinator,
		logger:      logger,
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		logger.Info("using MediaPipe landmark detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", zap.Error(err))
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCamera replaces the frame source. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector replaces the landmark detector implementation.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Coordinator returns the recognition coordinator.
func (a *App) Coordinator() *recognize.Coordinator {
	return a.coordinator
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	a.logger.Info("recognition pipeline started")
	return nil
}

// Stop halts the frame loop and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", zap.Error(err))
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("error closing detector", zap.Error(err))
		}
	}

	a.logger.Info("recognition pipeline stopped")
}

func (a *App) currentDetector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
