// internal/kiosk/update.go
package kiosk

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Spartificial/project-services/internal/api"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width

	case tickMsg:
		m.currentTime = time.Time(msg)
		return m, timeTickCmd()

	case logUpdateMsg:
		return m, nil

	case frameFrozenMsg:
		if msg.err != nil {
			// Capture failures must not take down the mode machine
			m.status = "Capture failed, try retaking the photo"
			return m, m.addLog("ERROR", fmt.Sprintf("Frame capture failed: %v", msg.err))
		}
		m.status = "Photo captured"
		return m, m.addLog("INFO", fmt.Sprintf("Captured frame published at /frame/%s", msg.frame.Handle))

	case outcomeMsg:
		return m.handleOutcome(msg)

	case archiveSavedMsg:
		if msg.err != nil {
			m.status = "Download failed"
			return m, m.addLog("ERROR", fmt.Sprintf("Archive download failed: %v", msg.err))
		}
		m.status = fmt.Sprintf("Saved %s", msg.path)
		return m, m.addLog("INFO", fmt.Sprintf("Saved archive to %s", msg.path))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	if m.promptingLogout {
		return m.handleLogoutPromptKey(msg)
	}

	switch m.modeState.Mode() {
	case ModeLive:
		return m.handleLiveKey(msg)
	case ModeAdmin:
		return m.handleAdminKey(msg)
	case ModeRegistering:
		return m.handleRegisteringKey(msg)
	}
	return m, nil
}

func (m Model) handleLiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.teardown()
		return m, tea.Quit

	case "l":
		// Capture-then-submit, atomically: the frame never enters the store
		snapshot, err := m.grabSnapshot()
		if err != nil {
			m.status = "Cannot log in without the camera"
			return m, m.addLog("ERROR", fmt.Sprintf("Login capture failed: %v", err))
		}
		m.status = "Logging in..."
		return m, m.loginCmd(snapshot)

	case "o":
		m.promptingLogout = true
		m.logoutPrompt.Reset()
		m.logoutPrompt.Focus()
		m.status = "Enter the email to log out"

	case "a":
		m.modeState = m.modeState.EnterAdmin()
		m.status = "Admin panel"
	}
	return m, nil
}

func (m Model) handleLogoutPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptingLogout = false
		m.logoutPrompt.Blur()
		m.status = "Logout cancelled"
		return m, nil

	case "enter":
		email := m.logoutPrompt.Value()
		m.promptingLogout = false
		m.logoutPrompt.Blur()
		if email == "" {
			m.status = "Email Is Empty!"
			return m, nil
		}
		m.status = "Logging out..."
		return m, m.logoutCmd(email)
	}

	var cmd tea.Cmd
	m.logoutPrompt, cmd = m.logoutPrompt.Update(msg)
	return m, cmd
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.modeState = m.modeState.StartRegistering()
		m.resetForm()
		m.status = "Capturing photo..."
		return m, m.freezeFirstCmd()

	case "d":
		m.status = "Downloading attendance logs..."
		return m, m.downloadCmd("logs.zip", m.client.AttendanceLogs)

	case "u":
		m.status = "Downloading registered users..."
		return m, m.downloadCmd("user_details.csv", m.client.RegisteredUsers)

	case "b", "esc", "backspace":
		m.modeState = m.modeState.GoBack()
		m.status = "Camera is live"
	}
	return m, nil
}

func (m Model) handleRegisteringKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panels := m.modeState.Panels()

	switch msg.String() {
	case "esc":
		// Cancel: drop the frame and the fields, back to the live preview
		m.modeState = m.modeState.Reset()
		m.resetForm()
		m.store.Clear()
		m.status = "Registration cancelled"
		return m, nil

	case "ctrl+t":
		return m.handleRetake()

	case "ctrl+s":
		if !panels.Submit {
			// Submit is hidden while a retake awaits confirmation
			return m, nil
		}
		return m.handleSubmit()

	case "tab", "down", "enter":
		m.focusField((m.focused + 1) % fieldCount)
		return m, nil

	case "shift+tab", "up":
		m.focusField((m.focused + fieldCount - 1) % fieldCount)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
}

func (m Model) handleRetake() (tea.Model, tea.Cmd) {
	if m.modeState.Retake() == RetakeInitial {
		// Re-freeze a new frame; the store revokes the old handle
		snapshot, err := m.grabSnapshot()
		if err != nil {
			m.status = "Retake failed"
			return m, m.addLog("ERROR", fmt.Sprintf("Retake capture failed: %v", err))
		}
		frame, err := m.store.Set(snapshot)
		if err != nil {
			m.status = "Retake failed"
			return m, m.addLog("ERROR", fmt.Sprintf("Retake publish failed: %v", err))
		}
		m.modeState = m.modeState.ToggleRetake()
		m.status = "New photo taken, confirm to keep it"
		return m, m.addLog("INFO", fmt.Sprintf("Retake published at /frame/%s", frame.Handle))
	}

	m.modeState = m.modeState.ToggleRetake()
	m.status = "Photo confirmed"
	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	form := m.form()
	if err := form.Validate(); err != nil {
		m.status = fmt.Sprintf("Cannot submit: %v", err)
		return m, nil
	}

	frame, ok := m.store.Current()
	if !ok {
		// Guard: refuse silently, log only
		return m, m.addLog("ERROR", "Registration submitted with no captured frame")
	}

	m.status = "Registering..."
	return m, m.registerCmd(form.Registration(), frame.PNG)
}

func (m Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("%s failed: network error", msg.op)
		return m, m.addLog("ERROR", fmt.Sprintf("%s transport error: %v", msg.op, msg.err))
	}

	switch msg.outcome.Kind {
	case api.LoginSuccess:
		m.status = fmt.Sprintf("Welcome back %s!", msg.outcome.User)
	case api.LoginUnknownUser:
		m.status = "Unknown user! Please try again or register new user!"
	case api.LoginAlreadyActive:
		m.status = "You are already logged in."
	case api.LogoutSuccess:
		m.status = fmt.Sprintf("Goodbye %s!", msg.outcome.User)
	case api.LogoutUnknownUser:
		m.status = "Unknown user! Please try again or register new user!"
	case api.RegistrationSuccess:
		m.status = "User was registered successfully!"
		m.modeState = m.modeState.Reset()
		m.resetForm()
		m.store.Clear()
	case api.RegistrationFailure:
		m.status = "Registration failed, please try again"
	}

	return m, m.addLog("INFO", fmt.Sprintf("%s outcome: %s", msg.op, m.status))
}

// grabSnapshot takes a single synchronous capture off the live stream.
func (m *Model) grabSnapshot() ([]byte, error) {
	if m.stream == nil {
		return nil, fmt.Errorf("no live camera stream")
	}
	return m.capturer.Grab(m.stream)
}

// freezeFirstCmd runs the two-stage first capture off the update loop and
// lands the result in the store.
func (m *Model) freezeFirstCmd() tea.Cmd {
	stream := m.stream
	capturer := m.capturer
	store := m.store

	return func() tea.Msg {
		if stream == nil {
			return frameFrozenMsg{err: fmt.Errorf("no live camera stream")}
		}
		png, err := capturer.First(stream)
		if err != nil {
			return frameFrozenMsg{err: err}
		}
		frame, err := store.Set(png)
		if err != nil {
			return frameFrozenMsg{err: err}
		}
		return frameFrozenMsg{frame: frame}
	}
}

func (m *Model) loginCmd(snapshot []byte) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		outcome, err := client.Login(snapshot)
		return outcomeMsg{op: "Login", outcome: outcome, err: err}
	}
}

func (m *Model) logoutCmd(email string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		outcome, err := client.Logout(email)
		return outcomeMsg{op: "Logout", outcome: outcome, err: err}
	}
}

func (m *Model) registerCmd(reg api.Registration, snapshot []byte) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		outcome, err := client.Register(reg, snapshot)
		return outcomeMsg{op: "Register", outcome: outcome, err: err}
	}
}

// downloadCmd fetches a binary archive and persists it under path.
func (m *Model) downloadCmd(path string, fetch func() (io.ReadCloser, int64, error)) tea.Cmd {
	return func() tea.Msg {
		body, _, err := fetch()
		if err != nil {
			return archiveSavedMsg{path: path, err: err}
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return archiveSavedMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return archiveSavedMsg{path: path, err: err}
		}
		return archiveSavedMsg{path: path}
	}
}
