// Package capture provides webcam frame acquisition and motion gating for
// the recognition pipeline, built on GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture resolution, kept low so per-frame detection stays real-time.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// ErrCameraClosed is returned when reading from a camera that is not open.
var ErrCameraClosed = errors.New("camera is not open")

// Camera is the frame source for the pipeline. Implementations must be safe
// for concurrent use; the caller owns returned Mats and must close them.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// webcam reads frames from a physical camera device.
type webcam struct {
	deviceID int
	mu       sync.Mutex
	capture  *gocv.VideoCapture
	open     bool
}

// NewCamera creates a Camera reading from the given device id.
func NewCamera(deviceID int) Camera {
	return &webcam{deviceID: deviceID}
}

func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, FrameWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, FrameHeight)

	c.capture = capture
	c.open = true
	return nil
}

func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		c.open = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.open = false
	return err
}

// ReadFrame reads a single frame. The caller must close the returned Mat.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		return nil, ErrCameraClosed
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
