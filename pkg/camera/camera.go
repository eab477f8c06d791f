// pkg/camera/camera.go
package camera

import (
	"errors"
	"image"
)

var (
	// ErrPermissionDenied is returned when the platform refuses camera access.
	ErrPermissionDenied = errors.New("camera access denied")
	// ErrDeviceUnavailable is returned when no usable camera exists.
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	// ErrNotStreaming is returned when a frame is requested without a live stream.
	ErrNotStreaming = errors.New("camera is not streaming")
)

// Stream is a live video source. Read returns the most recent frame.
type Stream interface {
	Read() (image.Image, error)
}

// Manager owns at most one live camera stream at a time.
//
// Acquire is idempotent: acquiring while already streaming returns the
// existing stream instead of opening the device twice. Release closes the
// device for clean teardown.
type Manager interface {
	Acquire() (Stream, error)
	Release() error
	IsStreaming() bool
}
