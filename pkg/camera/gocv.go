package camera

import (
	"fmt"
	"image"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// videoDevice is the slice of gocv.VideoCapture the manager depends on.
type videoDevice interface {
	IsOpened() bool
	Read(m *gocv.Mat) bool
	Close() error
}

func openVideoCapture(index int) (videoDevice, error) {
	return gocv.OpenVideoCapture(index)
}

// GocvManager manages a single webcam through OpenCV.
type GocvManager struct {
	deviceID string
	open     func(index int) (videoDevice, error)

	mu     sync.Mutex
	device videoDevice
	stream *gocvStream
}

func NewGocvManager(deviceID string) *GocvManager {
	return &GocvManager{deviceID: deviceID, open: openVideoCapture}
}

// Acquire opens the configured device, or returns the already-open stream.
func (m *GocvManager) Acquire() (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-acquiring while streaming is a no-op
	if m.stream != nil {
		return m.stream, nil
	}

	cameraIndex, err := strconv.Atoi(m.deviceID)
	if err != nil {
		return nil, fmt.Errorf("invalid device ID %q: %w", m.deviceID, ErrDeviceUnavailable)
	}

	device, err := m.open(cameraIndex)
	if err != nil {
		return nil, fmt.Errorf("error opening camera %s: %w", m.deviceID, ErrDeviceUnavailable)
	}

	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("camera %s refused to open: %w", m.deviceID, ErrPermissionDenied)
	}

	m.device = device
	m.stream = newGocvStream(device)
	return m.stream, nil
}

// Release closes the device and invalidates the stream.
func (m *GocvManager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}

	m.stream.close()
	m.stream = nil

	device := m.device
	m.device = nil
	if err := device.Close(); err != nil {
		return fmt.Errorf("error closing camera %s: %v", m.deviceID, err)
	}
	return nil
}

func (m *GocvManager) IsStreaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

// gocvStream reads frames from an open capture device. A single Mat is
// reused across reads to avoid per-frame allocations.
type gocvStream struct {
	mu     sync.Mutex
	device videoDevice
	frame  gocv.Mat
	closed bool
}

func newGocvStream(device videoDevice) *gocvStream {
	return &gocvStream{device: device, frame: gocv.NewMat()}
}

func (s *gocvStream) Read() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrNotStreaming
	}

	if ok := s.device.Read(&s.frame); !ok {
		return nil, fmt.Errorf("failed to read frame: %w", ErrDeviceUnavailable)
	}
	if s.frame.Empty() {
		return nil, fmt.Errorf("empty frame: %w", ErrDeviceUnavailable)
	}

	img, err := s.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %v", err)
	}
	return img, nil
}

func (s *gocvStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.frame.Close()
		s.closed = true
	}
}
