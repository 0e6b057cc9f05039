// Package tui is a terminal front end for a local search session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/okieraised/points-of-interests/internal/localsearch"
	"github.com/okieraised/points-of-interests/internal/models"
)

// Controller interface for dependency injection
type Controller interface {
	BeginEditing()
	SetText(text string)
	Submit()
	EndEditing()
	SelectSuggestion(item models.SuggestionItem)
	SelectPlace(place models.PlaceItem)
	SelectFeature(ref string)
	Foreground()
}

// Model is the bubbletea model rendering the session rows.
type Model struct {
	ctrl   Controller
	styles *Styles
	input  textinput.Model

	rows      []localsearch.Row
	cursor    int
	mode      localsearch.Mode
	alert     *localsearch.Alert
	selection *localsearch.Selection

	width  int
	height int
}

// New creates a model. rows is the initial snapshot, usually Session.Rows().
func New(ctrl Controller, placeholder string, rows localsearch.Snapshot) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "🔍 "
	ti.CharLimit = 256

	return Model{
		ctrl:   ctrl,
		styles: NewStyles(),
		input:  ti,
		rows:   rows.Rows,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case rowsMsg:
		m.rows = msg.Rows
		m.cursor = min(m.cursor, max(m.payloadLen()-1, 0))
		return m, nil

	case modeMsg:
		m.mode = localsearch.Mode(msg)
		return m, nil

	case alertMsg:
		a := localsearch.Alert(msg)
		m.alert = &a
		return m, nil

	case selectionMsg:
		s := localsearch.Selection(msg)
		m.selection = &s
		return m, nil

	case textMsg:
		m.input.SetValue(string(msg))
		m.input.CursorEnd()
		if m.input.Focused() {
			m.input.Blur()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch {
	case m.alert != nil:
		return m.handleAlertKey(msg)
	case m.selection != nil:
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
			m.selection = nil
		}
		return m, nil
	case m.input.Focused():
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/", "i":
		m.ctrl.BeginEditing()
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(m.payloadLen()-1, 0))
	case "enter":
		m.selectRow()
	case "m":
		// Stands in for tapping the place's marker on a map.
		if row, ok := m.payloadRow(m.cursor); ok && row.Kind == localsearch.RowPlace {
			m.ctrl.SelectFeature("place:" + row.Place.Handle)
		}
	case "r":
		m.ctrl.Foreground()
	}
	return m, nil
}

func (m Model) handleAlertKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.alert = nil
	case "s":
		// No system settings in a terminal; retry the location request instead.
		for _, a := range m.alert.Actions {
			if a.OpensSettings {
				m.alert = nil
				m.ctrl.Foreground()
				break
			}
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.input.Blur()
		m.cursor = 0
		m.ctrl.Submit()
		return m, nil
	case tea.KeyEsc:
		m.input.Blur()
		m.ctrl.EndEditing()
		return m, nil
	case tea.KeyDown:
		// Leave the field but keep the completion session open to browse suggestions.
		m.input.Blur()
		m.cursor = 0
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.cursor = 0
		m.ctrl.SetText(after)
	}
	return m, cmd
}

func (m *Model) selectRow() {
	row, ok := m.payloadRow(m.cursor)
	if !ok {
		return
	}
	switch row.Kind {
	case localsearch.RowSuggestion:
		m.ctrl.SelectSuggestion(*row.Suggestion)
	case localsearch.RowPlace:
		m.ctrl.SelectPlace(*row.Place)
	}
}

// payloadRow returns the i-th non-header row.
func (m Model) payloadRow(i int) (localsearch.Row, bool) {
	if len(m.rows) < 2 || i < 0 || i >= len(m.rows)-1 {
		return localsearch.Row{}, false
	}
	return m.rows[i+1], true
}

func (m Model) payloadLen() int {
	return max(len(m.rows)-1, 0)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, row := range m.rows {
		if row.Kind == localsearch.RowHeader {
			b.WriteString(m.styles.Header.Render(row.Header))
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.renderRow(row, i-1 == m.cursor && !m.input.Focused()))
		b.WriteString("\n")
	}

	if m.selection != nil {
		b.WriteString(m.renderSelection(*m.selection))
		b.WriteString("\n")
	}
	if m.alert != nil {
		b.WriteString(m.renderAlert(*m.alert))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Status.Render("mode: " + m.mode.String()))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("/ search • ↑/↓ move • enter select • m map • esc back • r retry location • q quit"))
	return b.String()
}

func (m Model) renderRow(row localsearch.Row, selected bool) string {
	marker := "  "
	if selected {
		marker = m.styles.Selected.Render("▸ ")
	}

	switch row.Kind {
	case localsearch.RowSuggestion:
		s := row.Suggestion
		title := renderStyled(localsearch.Highlight(s.Title, s.TitleHighlights), m.styles.Title, m.styles.Highlight)
		line := marker + title
		if s.Subtitle != "" {
			line += "\n    " + renderStyled(localsearch.Highlight(s.Subtitle, s.SubtitleHighlights), m.styles.Subtitle, m.styles.Highlight)
		}
		return line
	case localsearch.RowPlace:
		p := row.Place
		name := m.styles.Title.Render(p.Name)
		if selected {
			name = m.styles.Selected.Render(p.Name)
		}
		line := fmt.Sprintf("%s%s %s", marker, categorySymbol(p.Category), name)
		if p.FormattedAddress != "" {
			line += "\n    " + m.styles.Subtitle.Render(p.FormattedAddress)
		}
		return line
	}
	return ""
}

func (m Model) renderSelection(s localsearch.Selection) string {
	p := s.Place
	lines := []string{
		m.styles.Header.UnsetMarginBottom().Render(categorySymbol(p.Category) + " " + p.Name),
	}
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, m.styles.DetailLabel.Render(label)+value)
		}
	}
	field("Address", p.FormattedAddress)
	field("Phone", p.Phone)
	field("Website", p.URL)
	field("Category", strings.ReplaceAll(string(p.Category), "_", " "))
	field("Map", fmt.Sprintf("%.5f, %.5f (%.3f° × %.3f°)",
		s.Region.Center.Latitude, s.Region.Center.Longitude, s.Region.LatitudeDelta, s.Region.LongitudeDelta))

	return m.styles.DetailBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderAlert(a localsearch.Alert) string {
	labels := make([]string, 0, len(a.Actions))
	for _, action := range a.Actions {
		key := "enter"
		if action.OpensSettings {
			key = "s"
		} else if len(a.Actions) > 1 {
			key = "esc"
		}
		labels = append(labels, fmt.Sprintf("[%s] %s", key, action.Label))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.AlertTitle.Render(a.Title),
		a.Message,
		m.styles.Dim.Render(strings.Join(labels, "  ")),
	)
	return m.styles.AlertBox.Render(body)
}
