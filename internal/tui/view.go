package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenNSW/aadhaar/internal/orchestrator"
	"github.com/OpenNSW/aadhaar/internal/widget"
)

// View implements the bubbletea.Model interface
func (m *Model) View() string {
	st := m.page.State()
	w := m.widget.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Aadhaar Verification"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"Upload your Aadhaar document for verification and processing.\nSupported formats: %s (Max %s)",
		w.Accept, w.MaxSizeLabel)))
	b.WriteString("\n\n")

	if m.browser.open {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("esc to close the browser"))
		return b.String()
	}

	b.WriteString(renderDropZone(w))
	b.WriteString("\n")

	if st.Phase == orchestrator.PhaseSuccess && st.Result != nil {
		lines := []string{"Upload Successful!"}
		if st.Result.Data != nil {
			if st.Result.Data.Message != "" {
				lines = append(lines, st.Result.Data.Message)
			}
			if st.Result.Data.Status != "" {
				lines = append(lines, "Status: "+string(st.Result.Data.Status))
			}
		}
		b.WriteString(successStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error))
		b.WriteString("\n")
	}

	if m.verification != nil {
		line := fmt.Sprintf("Verification %s: %s", m.verification.ID, m.verification.Status)
		if m.verification.ReviewerNotes != "" {
			line += " (" + m.verification.ReviewerNotes + ")"
		}
		b.WriteString(mutedStyle.Render(line))
		b.WriteString("\n")
	} else if m.lookupErr != "" {
		b.WriteString(errorStyle.Render(m.lookupErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderButtons(st))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keyMap))
	return b.String()
}

func renderDropZone(w widget.View) string {
	style := dropZoneStyle
	switch {
	case w.Disabled:
		style = dropZoneDisabledStyle
	case w.Dragging:
		style = dropZoneActiveStyle
	}

	if !w.HasFile() {
		return style.Render("Drop a file here (paste its path) or press Enter to browse\n" +
			mutedStyle.Render(fmt.Sprintf("%s up to %s", w.Accept, w.MaxSizeLabel)))
	}

	lines := []string{
		w.File.Name,
		mutedStyle.Render(w.SizeLabel),
	}
	if w.PreviewURL != "" {
		lines = append(lines, mutedStyle.Render("Preview: "+w.PreviewURL))
	}
	if !w.Disabled {
		lines = append(lines, mutedStyle.Render("x to remove"))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderButtons(st orchestrator.State) string {
	var submit string
	switch {
	case st.Busy():
		submit = buttonDisabledStyle.Render(m.spinner.View() + " Processing...")
	case st.CanSubmit():
		submit = buttonStyle.Render("Verify Aadhaar (s)")
	default:
		submit = buttonDisabledStyle.Render("Verify Aadhaar (s)")
	}

	if !st.CanReset() {
		return submit
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, submit, "  ", outlineButtonStyle.Render("Reset (r)"))
}
