// internal/kiosk/view.go
package kiosk

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginTop(1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View renders the UI
func (m Model) View() string {
	timeStr := m.currentTime.Format("Mon Jan 2 15:04:05 2006")

	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		"📷 Attendance Kiosk",
		lipgloss.NewStyle().
			Width(max(m.width-22, 0)).
			Align(lipgloss.Right).
			Render(timeStr),
	)
	header := headerStyle.Width(m.width).Render(headerContent)

	var body strings.Builder
	body.WriteString(dimStyle.Render(fmt.Sprintf("Live preview: http://localhost:%s (mode: %s)", m.preview.Port(), m.modeState.Mode())))
	body.WriteString("\n")

	for _, panel := range m.orderedPanels() {
		body.WriteString(panel)
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(dimStyle.Render("Activity"))
	body.WriteString("\n")
	body.WriteString(m.logViewport.View())

	statusBar := statusBarStyle.Width(m.width).Render(m.status)

	return lipgloss.JoinVertical(lipgloss.Left, header, body.String(), statusBar)
}

// orderedPanels renders the visible panel groups, the higher z-order group
// first so the most recently entered mode's panel sits on top.
func (m Model) orderedPanels() []string {
	panels := m.modeState.Panels()

	var rendered []string
	if panels.Login || panels.Logout || panels.Admin {
		rendered = append(rendered, m.renderLivePanel())
	}

	adminPanel := ""
	if panels.Register || panels.DownloadLogs || panels.GoBack {
		adminPanel = m.renderAdminPanel()
	}
	registeringPanel := ""
	if panels.Form {
		registeringPanel = m.renderRegisteringPanel(panels)
	}

	switch {
	case adminPanel != "" && registeringPanel != "":
		if panels.ZRegistering >= panels.ZAdmin {
			rendered = append(rendered, registeringPanel, adminPanel)
		} else {
			rendered = append(rendered, adminPanel, registeringPanel)
		}
	case adminPanel != "":
		rendered = append(rendered, adminPanel)
	case registeringPanel != "":
		rendered = append(rendered, registeringPanel)
	}

	return rendered
}

func (m Model) renderLivePanel() string {
	var content strings.Builder

	content.WriteString(panelTitleStyle.Render("Welcome"))
	content.WriteString("\n")
	content.WriteString(keyStyle.Render("l") + " log in    ")
	content.WriteString(keyStyle.Render("o") + " log out    ")
	content.WriteString(keyStyle.Render("a") + " admin    ")
	content.WriteString(keyStyle.Render("q") + " quit")

	if m.promptingLogout {
		content.WriteString("\n\nEmail: " + m.logoutPrompt.View())
		content.WriteString("\n" + dimStyle.Render("enter to log out, esc to cancel"))
	}

	return panelStyle.Render(content.String())
}

func (m Model) renderAdminPanel() string {
	var content strings.Builder

	content.WriteString(panelTitleStyle.Render("Admin"))
	content.WriteString("\n")
	content.WriteString(keyStyle.Render("r") + " register new user    ")
	content.WriteString(keyStyle.Render("d") + " download logs    ")
	content.WriteString(keyStyle.Render("u") + " download users    ")
	content.WriteString(keyStyle.Render("b") + " home page")

	return panelStyle.Render(content.String())
}

func (m Model) renderRegisteringPanel(panels Panels) string {
	var content strings.Builder

	content.WriteString(panelTitleStyle.Render("Register New User"))
	content.WriteString("\n")

	labels := [fieldCount]string{"Name", "Email", "Phone", "Class", "Section"}
	for i, in := range m.inputs {
		content.WriteString(fmt.Sprintf("%-8s %s\n", labels[i], in.View()))
	}

	if frame, ok := m.store.Current(); ok {
		content.WriteString(dimStyle.Render(fmt.Sprintf("photo: /frame/%s", frame.Handle)))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	if panels.Retake {
		label := "retake photo"
		if m.modeState.Retake() == RetakeConfirming {
			label = "confirm retake"
		}
		content.WriteString(keyStyle.Render("ctrl+t") + " " + label + "    ")
	}
	if panels.Submit {
		content.WriteString(keyStyle.Render("ctrl+s") + " submit    ")
	}
	if panels.Cancel {
		content.WriteString(keyStyle.Render("esc") + " cancel")
	}

	return panelStyle.Render(content.String())
}
