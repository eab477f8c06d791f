package kiosk

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/Spartificial/project-services/internal/api"
	"github.com/Spartificial/project-services/internal/capture"
	"github.com/Spartificial/project-services/internal/config"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeStream serves a uniform gray frame forever.
type fakeStream struct {
	reads int
}

func (s *fakeStream) Read() (image.Image, error) {
	s.reads++
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img, nil
}

// fakePublisher counts handle traffic, standing in for the preview server.
type fakePublisher struct {
	next    int
	live    map[string]bool
	revokes int
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{live: make(map[string]bool)}
}

func (p *fakePublisher) Publish(png []byte) (string, error) {
	p.next++
	handle := fmt.Sprintf("h%d", p.next)
	p.live[handle] = true
	return handle, nil
}

func (p *fakePublisher) Revoke(handle string) {
	delete(p.live, handle)
	p.revokes++
}

// fakeClient records what the kiosk submits and answers with success.
type fakeClient struct {
	loginSnapshot    []byte
	logoutEmail      string
	registered       *api.Registration
	registerSnapshot []byte
}

func (c *fakeClient) Login(snapshot []byte) (api.Outcome, error) {
	c.loginSnapshot = snapshot
	return api.Outcome{Kind: api.LoginSuccess, User: "alice"}, nil
}

func (c *fakeClient) Logout(email string) (api.Outcome, error) {
	c.logoutEmail = email
	return api.Outcome{Kind: api.LogoutSuccess, User: "bob"}, nil
}

func (c *fakeClient) Register(reg api.Registration, snapshot []byte) (api.Outcome, error) {
	c.registered = &reg
	c.registerSnapshot = snapshot
	return api.Outcome{Kind: api.RegistrationSuccess, User: reg.Email}, nil
}

func (c *fakeClient) AttendanceLogs() (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader([]byte("zip"))), 3, nil
}

func (c *fakeClient) RegisteredUsers() (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader([]byte("csv"))), 3, nil
}

func newTestModel(client submitter, pub *fakePublisher) Model {
	return Model{
		config:       &config.AppConfig{},
		modeState:    NewModeState(),
		client:       client,
		capturer:     capture.NewCapturer(400, 300, time.Millisecond),
		store:        capture.NewStore(pub),
		stream:       &fakeStream{},
		inputs:       newFormInputs(),
		logoutPrompt: newLogoutPrompt(),
		logViewport:  viewport.New(0, 8),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press runs one key through Update and returns the new model and command.
func press(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key(s))
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned unexpected model type %T", updated)
	}
	return next, cmd
}

// enterRegistering drives the model from Live into Registering and runs
// the freeze command to completion.
func enterRegistering(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(t, m, "a")
	m, cmd := press(t, m, "r")
	if cmd == nil {
		t.Fatal("expected a freeze command on entering Registering")
	}

	msg, ok := cmd().(frameFrozenMsg)
	if !ok {
		t.Fatal("expected a frameFrozenMsg from the freeze command")
	}
	if msg.err != nil {
		t.Fatalf("freeze failed: %v", msg.err)
	}

	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestEnterRegisteringFreezesFrame(t *testing.T) {
	pub := newFakePublisher()
	m := newTestModel(&fakeClient{}, pub)

	m = enterRegistering(t, m)

	if m.modeState.Mode() != ModeRegistering {
		t.Fatalf("expected Registering, got %s", m.modeState.Mode())
	}
	if _, ok := m.store.Current(); !ok {
		t.Error("expected a frozen frame in the store")
	}
	if len(pub.live) != 1 {
		t.Errorf("expected one live handle, got %d", len(pub.live))
	}
}

func TestRetakeReplacesFrame(t *testing.T) {
	pub := newFakePublisher()
	m := newTestModel(&fakeClient{}, pub)
	m = enterRegistering(t, m)

	before, _ := m.store.Current()

	m, _ = press(t, m, "ctrl+t")
	after, ok := m.store.Current()
	if !ok {
		t.Fatal("expected the store to keep a frame through a retake")
	}
	if before.Handle == after.Handle {
		t.Error("retake should publish a fresh handle")
	}
	if pub.revokes != 1 {
		t.Errorf("expected exactly one revocation, got %d", pub.revokes)
	}
	if len(pub.live) != 1 {
		t.Errorf("expected one live handle, got %d", len(pub.live))
	}
	if m.modeState.Panels().Submit {
		t.Error("submit should be hidden until the retake is confirmed")
	}

	// Confirming keeps the fresh frame and restores submit
	m, _ = press(t, m, "ctrl+t")
	confirmed, _ := m.store.Current()
	if confirmed.Handle != after.Handle {
		t.Error("confirming a retake must not capture again")
	}
	if !m.modeState.Panels().Submit {
		t.Error("submit should return after confirmation")
	}
}

func TestSubmitBlockedWhileConfirmingRetake(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, newFakePublisher())
	m = enterRegistering(t, m)
	m, _ = press(t, m, "ctrl+t")

	m, cmd := press(t, m, "ctrl+s")
	if cmd != nil {
		t.Error("submit should be inert while a retake awaits confirmation")
	}
	if client.registered != nil {
		t.Error("no registration should be sent")
	}
	if m.modeState.Mode() != ModeRegistering {
		t.Error("mode should be unchanged")
	}
}

func TestSubmitBlockedOnMissingField(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, newFakePublisher())
	m = enterRegistering(t, m)

	// Leave the form empty
	m, cmd := press(t, m, "ctrl+s")
	if cmd != nil {
		t.Error("expected no submission with an empty form")
	}
	if client.registered != nil {
		t.Error("no registration should be sent")
	}
	if m.status != "Cannot submit: Name is empty" {
		t.Errorf("expected the first missing field in the status, got %q", m.status)
	}
}

func TestRegisterSuccessResetsToLive(t *testing.T) {
	client := &fakeClient{}
	pub := newFakePublisher()
	m := newTestModel(client, pub)
	m = enterRegistering(t, m)

	values := [fieldCount]string{"Alice Smith", "alice@example.com", "5550100", "10", "B"}
	for i, v := range values {
		m.inputs[i].SetValue(v)
	}

	m, cmd := press(t, m, "ctrl+s")
	if cmd == nil {
		t.Fatal("expected a register command")
	}

	msg, ok := cmd().(outcomeMsg)
	if !ok {
		t.Fatal("expected an outcomeMsg")
	}
	if msg.outcome.Kind != api.RegistrationSuccess {
		t.Fatalf("expected RegistrationSuccess, got %v", msg.outcome.Kind)
	}
	if client.registered == nil || client.registered.Email != "alice@example.com" {
		t.Fatalf("registration fields not submitted: %+v", client.registered)
	}
	if len(client.registerSnapshot) == 0 {
		t.Error("registration should carry the stored frame")
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)

	if m.modeState.Mode() != ModeLive {
		t.Errorf("expected Live after a successful registration, got %s", m.modeState.Mode())
	}
	if _, ok := m.store.Current(); ok {
		t.Error("the frame store should be cleared")
	}
	if len(pub.live) != 0 {
		t.Errorf("expected all handles revoked, got %d live", len(pub.live))
	}
	if m.form() != (Form{}) {
		t.Errorf("expected the form cleared, got %+v", m.form())
	}
}

func TestCancelDropsFrameAndFields(t *testing.T) {
	pub := newFakePublisher()
	m := newTestModel(&fakeClient{}, pub)
	m = enterRegistering(t, m)
	m.inputs[fieldName].SetValue("Alice")

	m, _ = press(t, m, "esc")

	if m.modeState.Mode() != ModeLive {
		t.Errorf("expected Live after cancel, got %s", m.modeState.Mode())
	}
	if _, ok := m.store.Current(); ok {
		t.Error("cancel should clear the frame store")
	}
	if m.form() != (Form{}) {
		t.Error("cancel should clear the form")
	}
}

func TestLoginCapturesThenSubmits(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, newFakePublisher())

	m, cmd := press(t, m, "l")
	if cmd == nil {
		t.Fatal("expected a login command")
	}
	stream := m.stream.(*fakeStream)
	if stream.reads != 1 {
		t.Errorf("expected one capture before the network call, got %d reads", stream.reads)
	}

	msg := cmd().(outcomeMsg)
	if msg.err != nil {
		t.Fatalf("login failed: %v", msg.err)
	}
	if len(client.loginSnapshot) == 0 {
		t.Error("login should upload the captured snapshot")
	}

	// A login frame never enters the store
	if _, ok := m.store.Current(); ok {
		t.Error("login must not persist a frame in the store")
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.status != "Welcome back alice!" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestLogoutPromptFlow(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, newFakePublisher())

	m, _ = press(t, m, "o")
	if !m.promptingLogout {
		t.Fatal("expected the logout prompt to open")
	}

	// Empty email is refused locally
	m, cmd := press(t, m, "enter")
	if cmd != nil || client.logoutEmail != "" {
		t.Error("empty email should not reach the client")
	}

	m, _ = press(t, m, "o")
	m.logoutPrompt.SetValue("bob@example.com")
	m, cmd = press(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected a logout command")
	}

	msg := cmd().(outcomeMsg)
	if client.logoutEmail != "bob@example.com" {
		t.Errorf("expected the typed email, got %q", client.logoutEmail)
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.status != "Goodbye bob!" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestNoFrameRefusesRegistration(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, newFakePublisher())

	// Force Registering without a frozen frame
	m.modeState = NewModeState().EnterAdmin().StartRegistering()
	values := [fieldCount]string{"Alice Smith", "alice@example.com", "5550100", "10", "B"}
	for i, v := range values {
		m.inputs[i].SetValue(v)
	}

	_, cmd := press(t, m, "ctrl+s")
	// The refusal is silent: a log entry only, no submission
	if client.registered != nil {
		t.Error("registration must not be sent without a captured frame")
	}
	if cmd == nil {
		t.Error("expected the log command from the silent refusal")
	}
}
