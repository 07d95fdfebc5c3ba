package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fzabel/revsynth/pkg/diagram"
	"github.com/fzabel/revsynth/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BrowseModel - Interactive template browsing
// =============================================================================

// BrowseModel is the bubbletea model for browsing stored templates.
// The list view scrolls through the records; enter opens a detail view with
// the rendered circuit.
type BrowseModel struct {
	Records []*store.Record
	Cursor  int
	Height  int
	Offset  int

	detail string // rendered detail view, empty = list mode
}

// NewBrowseModel creates a browse model over the given records.
func NewBrowseModel(records []*store.Record) BrowseModel {
	return BrowseModel{
		Records: records,
		Height:  15,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.detail != "" {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "backspace":
				m.detail = ""
			}
			return m, nil
		}
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
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.detail = renderDetail(m.Records[m.Cursor])
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	if m.detail != "" {
		return m.detail
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Template Store"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		verified := StyleSuccess.Render("✓")
		if !r.IsVerified {
			verified = StyleWarning.Render("!")
		}

		rows = append(rows, []string{
			cursor,
			shortHash(r.CanonicalHash),
			fmt.Sprintf("%d", r.Width),
			fmt.Sprintf("%d", r.GateCount),
			fmt.Sprintf("%.1f", r.HardnessScore),
			verified,
			r.JobID,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Hash", "Width", "Gates", "Hardness", "OK", "Job").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.Cursor {
				return listSelectedStyle
			}
			if col == 6 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// renderDetail renders the full-circuit view for a record.
func renderDetail(r *store.Record) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleHighlight.Render(r.CanonicalHash))
	b.WriteString("\n\n")

	c, err := r.Circuit()
	if err != nil {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("corrupt gate list: %v", err)))
	} else {
		b.WriteString(diagram.Draw(c, diagram.Options{Full: true}))
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("hardness %.2f · job %s · created %s",
		r.HardnessScore, r.JobID, r.CreatedAt.Format("2006-01-02 15:04"))))

	return b.String()
}

// shortHash truncates a canonical hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
