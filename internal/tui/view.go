package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const defaultWidth = 80

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{m.header()}
	focused, hasFocus := m.focused()
	for _, l := range m.frame.Windows() {
		isFocused := hasFocus && l.App == focused
		sections = append(sections, m.window(l, isFocused, width))
	}
	if len(m.frame.Windows()) == 0 {
		sections = append(sections, m.styles.Muted.Render("  No open windows. Press a to launch an app."))
	}
	if m.frame.Dock.Visible {
		sections = append(sections, m.dock())
	}
	for _, n := range m.frame.Notifications {
		sections = append(sections, m.styles.Notice.Render(fmt.Sprintf("  %s: %s", n.Title, n.Body)))
	}
	if m.mode == modeLaunch {
		sections = append(sections, m.launcher())
	}
	if m.mode == modeInput {
		sections = append(sections, m.input.View())
	}
	if m.status != "" {
		sections = append(sections, m.styles.Error.Render("  "+m.status))
	}
	sections = append(sections, m.styles.Footer.Render(m.help()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	parts := []string{
		"PeakOS",
		m.frame.Persona.String(),
		fmt.Sprintf("workspace %d", m.frame.Workspace+1),
	}
	if m.frame.Theme.Name != "" {
		parts = append(parts, m.frame.Theme.Name)
	}
	if m.frame.Revealed {
		parts = append(parts, "revealed")
	}
	return m.styles.Header.Render(strings.Join(parts, "  ·  "))
}

func (m Model) window(l compositor.Layer, focused bool, width int) string {
	style := m.styles.Window
	if focused {
		style = m.styles.Focused
	}

	title := l.Title
	if title == "" {
		title = l.App.String()
	}
	geometry := m.styles.Muted.Render(fmt.Sprintf("%.0f,%.0f %.0fx%.0f", l.X, l.Y, l.Width, l.Height))
	head := m.styles.Title.Render(title) + "  " + geometry

	var body string
	if l.Placeholder {
		body = m.styles.Muted.Render(title + " is not available in this build")
	} else {
		selected := -1
		if focused {
			selected = m.selected
		}
		r := renderer{styles: m.styles, selected: selected}
		body = r.render(l.Content)
	}

	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, head, body))
}

func (m Model) dock() string {
	open := make(map[types.AppID]bool, len(m.frame.Dock.Open))
	for _, id := range m.frame.Dock.Open {
		open[id] = true
	}
	entry := func(id types.AppID) string {
		if open[id] {
			return m.styles.Button.Render("•" + id.String())
		}
		return id.String()
	}

	var items []string
	for _, id := range m.frame.Dock.Pinned {
		items = append(items, entry(id))
	}
	for _, id := range m.frame.Dock.Running {
		items = append(items, entry(id))
	}
	if len(m.frame.Dock.Repos) > 0 {
		items = append(items, "|")
		for _, id := range m.frame.Dock.Repos {
			items = append(items, entry(id))
		}
	}
	return m.styles.Dock.Render(strings.Join(items, "  "))
}

func (m Model) launcher() string {
	var lines []string
	for i, id := range types.AllApps() {
		line := "  " + id.String()
		if i == m.launch {
			line = m.styles.Selected.Render("> " + id.String())
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) help() string {
	switch m.mode {
	case modeSnap:
		return "snap: 1-4 corners · arrows halves · enter maximize · c center · f fullscreen · esc cancel"
	case modeWorkspace:
		return "workspace: 1-9 · esc cancel"
	case modeLaunch:
		return "launch: ↑/↓ select · enter toggle · esc cancel"
	case modeInput:
		return "input: enter send · esc cancel"
	}
	return "a launch · tab select · enter press · ] next · s snap · w workspace · m max · x close · i input · r reveal · d dock · t theme · p persona · q quit"
}

// renderer draws a node tree, highlighting the selected action. Actions are
// counted in the same depth-first order Model.actions collects them.
type renderer struct {
	styles   Styles
	selected int
	index    int
}

func (r *renderer) render(n host.Node) string {
	if n.Action != nil {
		i := r.index
		r.index++
		label := "[" + n.Text + "]"
		if i == r.selected {
			return r.styles.Selected.Render(label)
		}
		return r.styles.Button.Render(label)
	}

	switch n.Kind {
	case "row":
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, r.render(c), " ")
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	case "column":
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, r.render(c))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	case "button":
		return r.styles.Muted.Render("[" + n.Text + "]")
	}

	style := lipgloss.NewStyle()
	if c, ok := n.Props["color"].(string); ok && c != "" {
		style = style.Foreground(lipgloss.Color(c))
	}
	if w, ok := n.Props["weight"].(string); ok && w == "bold" {
		style = style.Bold(true)
	}
	return style.Render(n.Text)
}
