package app

import (
	"time"

	"go.uber.org/zap"
)

// runPipeline is the frame loop. It idles at a low frame rate until the
// motion gate sees movement, runs landmark detection and classification at
// the active rate, and drops back to idle after a quiet period. Per-frame
// failures are logged and skipped; the loop only exits on stop.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotion := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.logger.Warn("error reading frame", zap.Error(err))
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotion = time.Now()
				if !activeMode {
					activeMode = true
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					a.logger.Debug("switched to active mode")
				}
			} else if activeMode && time.Since(lastMotion) > IdleTimeout {
				activeMode = false
				frameInterval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(frameInterval)
				a.logger.Debug("switched to idle mode")
			}

			d := a.currentDetector()
			if !activeMode || d == nil {
				frame.Close()
				continue
			}

			det, err := d.Detect(frame)
			frame.Close()
			if err != nil {
				a.logger.Warn("error detecting landmarks", zap.Error(err))
				continue
			}

			if _, err := a.coordinator.ProcessFrame(det); err != nil {
				a.logger.Warn("frame classification failed", zap.Error(err))
			}
		}
	}
}
