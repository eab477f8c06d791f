package capture

import (
	"fmt"
	"sync"
)

// Publisher exposes a frame's bytes behind a revocable display handle so
// an image surface can show the frame without re-reading the blob.
type Publisher interface {
	Publish(png []byte) (handle string, err error)
	Revoke(handle string)
}

// Frame is a captured still: the PNG bytes plus the display handle they
// are currently published under.
type Frame struct {
	PNG    []byte
	Handle string
}

// Store holds at most one captured frame. Replacing or clearing the frame
// revokes its display handle exactly once, so at most one un-revoked
// handle is outstanding at any time.
type Store struct {
	mu        sync.Mutex
	publisher Publisher
	frame     *Frame
}

func NewStore(publisher Publisher) *Store {
	return &Store{publisher: publisher}
}

// Set replaces the current frame, revoking the prior display handle if one
// existed and publishing a fresh handle for the new blob.
func (s *Store) Set(png []byte) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, err := s.publisher.Publish(png)
	if err != nil {
		return Frame{}, fmt.Errorf("could not publish frame: %w", err)
	}

	if s.frame != nil {
		s.publisher.Revoke(s.frame.Handle)
	}

	s.frame = &Frame{PNG: png, Handle: handle}
	return *s.frame, nil
}

// Clear revokes the current handle and empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame != nil {
		s.publisher.Revoke(s.frame.Handle)
		s.frame = nil
	}
}

// Current returns the stored frame, if any.
func (s *Store) Current() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame == nil {
		return Frame{}, false
	}
	return *s.frame, true
}
