// internal/kiosk/model.go
package kiosk

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"strings"
	"time"

	"github.com/Spartificial/project-services/internal/api"
	"github.com/Spartificial/project-services/internal/capture"
	"github.com/Spartificial/project-services/internal/config"
	"github.com/Spartificial/project-services/internal/logging"
	"github.com/Spartificial/project-services/internal/preview"
	"github.com/Spartificial/project-services/pkg/camera"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// submitter is the slice of the attendance service client the kiosk uses.
type submitter interface {
	Login(snapshot []byte) (api.Outcome, error)
	Logout(email string) (api.Outcome, error)
	Register(reg api.Registration, snapshot []byte) (api.Outcome, error)
	AttendanceLogs() (io.ReadCloser, int64, error)
	RegisteredUsers() (io.ReadCloser, int64, error)
}

// Form field indexes, in validation order.
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldClass
	fieldSection
	fieldCount
)

// Msg types
type tickMsg time.Time

type logUpdateMsg struct{}

// frameFrozenMsg reports the async freeze that runs when Registering is
// entered.
type frameFrozenMsg struct {
	frame capture.Frame
	err   error
}

// outcomeMsg carries the interpreted result of one remote submission.
type outcomeMsg struct {
	op      string
	outcome api.Outcome
	err     error
}

// archiveSavedMsg reports a log-archive download attempt.
type archiveSavedMsg struct {
	path string
	err  error
}

// Model holds the kiosk state
type Model struct {
	config      *config.AppConfig
	width       int
	height      int
	status      string
	startTime   time.Time
	currentTime time.Time

	modeState ModeState

	cameraManager camera.Manager
	stream        camera.Stream
	capturer      *capture.Capturer
	store         *capture.Store
	preview       *preview.Server
	client        submitter

	inputs          []textinput.Model
	focused         int
	logoutPrompt    textinput.Model
	promptingLogout bool

	stopBroadcast chan struct{}

	logViewport viewport.Model
	logs        []string
}

// New builds the kiosk model, acquires the camera, and starts the local
// preview server. A camera failure is not fatal: the kiosk runs with a
// blank preview and reports the error in the status line.
func New(cfg *config.AppConfig) (Model, error) {
	now := time.Now()

	client, err := api.New(cfg.APIConfig.BaseURL, cfg.APIConfig.RegisterKeys)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		config:      cfg,
		status:      "Starting up...",
		startTime:   now,
		currentTime: now,
		modeState:   NewModeState(),
		client:      client,
		capturer: capture.NewCapturer(
			cfg.CameraConfig.CaptureWidth,
			cfg.CameraConfig.CaptureHeight,
			time.Duration(cfg.CameraConfig.SettleMs)*time.Millisecond,
		),
		cameraManager: camera.NewGocvManager(cfg.CameraConfig.DeviceID),
		inputs:        newFormInputs(),
		logoutPrompt:  newLogoutPrompt(),
		logViewport: func() viewport.Model {
			vp := viewport.New(0, 8)
			vp.MouseWheelEnabled = true
			return vp
		}(),
		logs: make([]string, 0),
	}

	m.preview = preview.New(cfg.PreviewPort, m.logCallback)
	m.store = capture.NewStore(m.preview)
	if err := m.preview.Start(); err != nil {
		m.addLog("ERROR", fmt.Sprintf("Error starting preview server: %v", err))
	}

	stream, err := m.cameraManager.Acquire()
	if err != nil {
		// Leave the preview blank, no recovery loop
		m.status = fmt.Sprintf("Camera unavailable: %v", err)
		m.addLog("ERROR", m.status)
	} else {
		m.stream = stream
		m.status = "Camera is live"
		m.startBroadcast()
	}

	return m, nil
}

// Init runs any initial IO
func (m Model) Init() tea.Cmd {
	return timeTickCmd()
}

func newFormInputs() []textinput.Model {
	placeholders := [fieldCount]string{
		fieldName:    "Full Name",
		fieldEmail:   "Email",
		fieldPhone:   "Phone Number",
		fieldClass:   "Class (1-12)",
		fieldSection: "Section",
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 64
		inputs[i] = in
	}
	return inputs
}

func newLogoutPrompt() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Email"
	in.CharLimit = 64
	return in
}

// form collects the current input values.
func (m *Model) form() Form {
	return Form{
		Name:    strings.TrimSpace(m.inputs[fieldName].Value()),
		Email:   strings.TrimSpace(m.inputs[fieldEmail].Value()),
		Phone:   strings.TrimSpace(m.inputs[fieldPhone].Value()),
		Class:   strings.TrimSpace(m.inputs[fieldClass].Value()),
		Section: strings.TrimSpace(m.inputs[fieldSection].Value()),
	}
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focused = fieldName
	m.inputs[fieldName].Focus()
}

// startBroadcast feeds the live camera feed to the preview page at a
// modest rate until stopBroadcast is closed.
func (m *Model) startBroadcast() {
	stop := make(chan struct{})
	m.stopBroadcast = stop

	stream := m.stream
	server := m.preview

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				img, err := stream.Read()
				if err != nil {
					continue
				}
				var buf bytes.Buffer
				if err := jpeg.Encode(&buf, img, nil); err != nil {
					continue
				}
				server.BroadcastFrame(buf.Bytes())
			}
		}
	}()
}

// teardown releases the camera and stops the preview server.
func (m *Model) teardown() {
	if m.stopBroadcast != nil {
		close(m.stopBroadcast)
		m.stopBroadcast = nil
	}
	m.store.Clear()
	if m.cameraManager != nil {
		if err := m.cameraManager.Release(); err != nil {
			logging.Logger.Printf("camera release: %v", err)
		}
	}
	if m.preview != nil && m.preview.IsRunning() {
		if err := m.preview.Stop(); err != nil {
			logging.Logger.Printf("preview stop: %v", err)
		}
	}
}

func (m *Model) addLog(level, message string) tea.Cmd {
	logEntry := fmt.Sprintf("[%s] %s", level, message)
	m.logs = append(m.logs, logEntry)
	logging.Logger.Println(logEntry)

	// Cap log buffer size
	if len(m.logs) > 1000 {
		m.logs = m.logs[1:]
	}

	m.logViewport.SetContent(strings.Join(m.logs, "\n"))
	m.logViewport.GotoBottom()
	return func() tea.Msg {
		return logUpdateMsg{}
	}
}

func (m *Model) logCallback(level, message string) {
	logging.Logger.Printf("[%s] %s", level, message)
}

// Helper command for time updates
func timeTickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
