// Package capture turns a live camera stream into still PNG snapshots and
// holds the single "current" frozen frame.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/Spartificial/project-services/pkg/camera"
	xdraw "golang.org/x/image/draw"
)

// Capturer samples a camera stream onto a fixed-size raster surface and
// encodes it to PNG bytes.
type Capturer struct {
	width  int
	height int
	settle time.Duration
}

func NewCapturer(width, height int, settle time.Duration) *Capturer {
	return &Capturer{width: width, height: height, settle: settle}
}

// Sample draws the current video frame at the fixed capture resolution.
// The source is center-cropped to the target aspect ratio and scaled to
// fill the surface exactly, never letterboxed.
func (c *Capturer) Sample(stream camera.Stream) (*image.RGBA, error) {
	src, err := stream.Read()
	if err != nil {
		return nil, fmt.Errorf("could not sample stream: %w", err)
	}

	surface := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	xdraw.ApproxBiLinear.Scale(surface, surface.Bounds(), src, cropRect(src.Bounds(), c.width, c.height), xdraw.Src, nil)
	return surface, nil
}

// Extract encodes a sampled surface to a PNG byte blob.
func (c *Capturer) Extract(surface image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return nil, fmt.Errorf("could not encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// First captures the first trustworthy frame after streaming starts. A
// stream may not have produced a real frame yet at that instant, so the
// surface is drawn once immediately, then redrawn after a short settle
// delay, before extraction. Sampling before the settle window closes can
// yield a black frame and must not be treated as final.
func (c *Capturer) First(stream camera.Stream) ([]byte, error) {
	if _, err := c.Sample(stream); err != nil {
		return nil, err
	}

	time.Sleep(c.settle)

	surface, err := c.Sample(stream)
	if err != nil {
		return nil, err
	}
	return c.Extract(surface)
}

// Grab captures a frame with a single synchronous draw. Suitable for
// on-demand captures (login, logout, retake) once the stream is warm.
func (c *Capturer) Grab(stream camera.Stream) ([]byte, error) {
	surface, err := c.Sample(stream)
	if err != nil {
		return nil, err
	}
	return c.Extract(surface)
}

// cropRect returns the largest centered sub-rectangle of src with the
// target aspect ratio.
func cropRect(src image.Rectangle, width, height int) image.Rectangle {
	srcW, srcH := src.Dx(), src.Dy()
	if srcW == 0 || srcH == 0 {
		return src
	}

	if srcW*height > width*srcH {
		// Source is wider than the target: crop the sides.
		cropW := srcH * width / height
		x := src.Min.X + (srcW-cropW)/2
		return image.Rect(x, src.Min.Y, x+cropW, src.Max.Y)
	}

	// Source is taller than the target: crop top and bottom.
	cropH := srcW * height / width
	y := src.Min.Y + (srcH-cropH)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+cropH)
}
