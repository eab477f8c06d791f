// internal/kiosk/mode.go
package kiosk

// Mode is the exclusive interaction state. Exactly one mode is active at
// any time; everything on screen derives from it.
type Mode int

const (
	ModeLive Mode = iota
	ModeAdmin
	ModeRegistering
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "Live"
	case ModeAdmin:
		return "Admin"
	case ModeRegistering:
		return "Registering"
	default:
		return "Unknown"
	}
}

// RetakeStep is the two-step retake affordance nested inside Registering.
// Initial shows "Retake Photo"; Confirming shows "Confirm Retake" and
// hides the submit action until confirmed.
type RetakeStep int

const (
	RetakeInitial RetakeStep = iota
	RetakeConfirming
)

// Panel z-orders. The most recently entered mode's panel group draws on
// top of the other.
const (
	zBaseline = 1
	zRaised   = 3
)

// ModeState is the capture-and-mode controller's state machine: the
// exclusive mode, the per-group z-order scalars, and the retake step.
// Transition methods return the successor state; illegal transitions
// return the state unchanged. The machine has no terminal state and
// always returns to Live.
type ModeState struct {
	mode         Mode
	retake       RetakeStep
	zAdmin       int
	zRegistering int
}

func NewModeState() ModeState {
	return ModeState{
		mode:         ModeLive,
		retake:       RetakeInitial,
		zAdmin:       zBaseline,
		zRegistering: zBaseline,
	}
}

func (s ModeState) Mode() Mode         { return s.mode }
func (s ModeState) Retake() RetakeStep { return s.retake }

// EnterAdmin opens the admin panel, raising it above the registering group.
func (s ModeState) EnterAdmin() ModeState {
	if s.mode != ModeLive {
		return s
	}
	s.mode = ModeAdmin
	s.zAdmin = zRaised
	s.zRegistering = zBaseline
	return s
}

// StartRegistering begins a registration, raising the registering group
// above admin and arming the retake affordance. The caller is responsible
// for freezing a frame and clearing the form alongside this transition.
func (s ModeState) StartRegistering() ModeState {
	if s.mode != ModeAdmin {
		return s
	}
	s.mode = ModeRegistering
	s.retake = RetakeInitial
	s.zAdmin = zBaseline
	s.zRegistering = zRaised
	return s
}

// ToggleRetake flips the retake affordance. The Initial half of the
// toggle is where the caller re-freezes a frame; the Confirming half
// restores the submit affordance.
func (s ModeState) ToggleRetake() ModeState {
	if s.mode != ModeRegistering {
		return s
	}
	if s.retake == RetakeInitial {
		s.retake = RetakeConfirming
	} else {
		s.retake = RetakeInitial
	}
	return s
}

// GoBack leaves the admin panel with no side effects on frame or fields.
func (s ModeState) GoBack() ModeState {
	if s.mode != ModeAdmin {
		return s
	}
	return NewModeState()
}

// Reset returns to Live from any mode, restoring baseline z-orders. Used
// on cancel and on successful registration.
func (s ModeState) Reset() ModeState {
	return NewModeState()
}

// Panels holds every visibility flag and z-order the display needs, all
// derived from the current state. Nothing here is stored, so the flags
// can never drift out of sync with the mode.
type Panels struct {
	// Live group
	Login  bool
	Logout bool
	Admin  bool

	// Admin group
	Register     bool
	DownloadLogs bool
	GoBack       bool

	// Registering group
	Form   bool
	Submit bool
	Cancel bool
	Retake bool

	ZAdmin       int
	ZRegistering int
}

// Panels derives the full visibility set for the current state.
func (s ModeState) Panels() Panels {
	live := s.mode == ModeLive
	admin := s.mode == ModeAdmin
	registering := s.mode == ModeRegistering

	return Panels{
		Login:  live,
		Logout: live,
		Admin:  live,

		Register:     admin,
		DownloadLogs: admin,
		GoBack:       admin,

		Form:   registering,
		Submit: registering && s.retake == RetakeInitial,
		Cancel: registering,
		Retake: registering,

		ZAdmin:       s.zAdmin,
		ZRegistering: s.zRegistering,
	}
}
