package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fontsnap/fontsnap/pkg/embed"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// FaceListModel is the bubbletea model for interactive font face selection.
type FaceListModel struct {
	Faces    []embed.Face
	Cursor   int
	Selected *embed.Face
	Height   int
	Offset   int
}

// NewFaceListModel creates a new face list model.
func NewFaceListModel(faces []embed.Face) FaceListModel {
	return FaceListModel{
		Faces:  faces,
		Height: 15,
	}
}

func (m FaceListModel) Init() tea.Cmd {
	return nil
}

func (m FaceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Faces)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Faces[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m FaceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Font Face"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Faces) {
		end = len(m.Faces)
	}

	for i := m.Offset; i < end; i++ {
		f := m.Faces[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		style := f.Style
		if style == "" {
			style = "normal"
		}
		weight := f.Weight
		if weight == "" {
			weight = "normal"
		}

		line := fmt.Sprintf("%s%-30s %-8s %-8s %s",
			cursor, f.Family, style, weight, listDimStyle.Render(f.Kind()))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case f.Kind() == "none":
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Faces))))

	return b.String()
}
