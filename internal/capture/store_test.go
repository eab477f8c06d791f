package capture

import (
	"fmt"
	"testing"
)

// countingPublisher tracks published and revoked handles.
type countingPublisher struct {
	next    int
	live    map[string]bool
	revoked map[string]int
}

func newCountingPublisher() *countingPublisher {
	return &countingPublisher{live: make(map[string]bool), revoked: make(map[string]int)}
}

func (p *countingPublisher) Publish(png []byte) (string, error) {
	p.next++
	handle := fmt.Sprintf("handle-%d", p.next)
	p.live[handle] = true
	return handle, nil
}

func (p *countingPublisher) Revoke(handle string) {
	delete(p.live, handle)
	p.revoked[handle]++
}

func (p *countingPublisher) liveCount() int { return len(p.live) }

func TestSetPublishesFrame(t *testing.T) {
	pub := newCountingPublisher()
	store := NewStore(pub)

	frame, err := store.Set([]byte("png-1"))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if frame.Handle == "" {
		t.Error("expected a display handle")
	}
	if string(frame.PNG) != "png-1" {
		t.Error("frame bytes do not match what was set")
	}

	current, ok := store.Current()
	if !ok {
		t.Fatal("expected a current frame")
	}
	if current.Handle != frame.Handle {
		t.Error("Current returned a different frame than Set")
	}
}

func TestReplaceRevokesExactlyOnce(t *testing.T) {
	pub := newCountingPublisher()
	store := NewStore(pub)

	first, _ := store.Set([]byte("png-1"))
	second, _ := store.Set([]byte("png-2"))
	third, _ := store.Set([]byte("png-3"))

	if pub.liveCount() != 1 {
		t.Errorf("expected exactly one live handle, got %d", pub.liveCount())
	}
	for _, handle := range []string{first.Handle, second.Handle} {
		if pub.revoked[handle] != 1 {
			t.Errorf("handle %s revoked %d times, expected once", handle, pub.revoked[handle])
		}
	}
	if pub.revoked[third.Handle] != 0 {
		t.Error("the current handle must not be revoked")
	}
}

func TestClearRevokesAndEmpties(t *testing.T) {
	pub := newCountingPublisher()
	store := NewStore(pub)

	frame, _ := store.Set([]byte("png-1"))
	store.Clear()

	if _, ok := store.Current(); ok {
		t.Error("expected the store to be empty after Clear")
	}
	if pub.revoked[frame.Handle] != 1 {
		t.Errorf("handle revoked %d times on clear, expected once", pub.revoked[frame.Handle])
	}

	// A second clear must not revoke again
	store.Clear()
	if pub.revoked[frame.Handle] != 1 {
		t.Error("clearing an empty store revoked a handle twice")
	}
}

func TestCurrentOnEmptyStore(t *testing.T) {
	store := NewStore(newCountingPublisher())
	if _, ok := store.Current(); ok {
		t.Error("expected no current frame in a fresh store")
	}
}
