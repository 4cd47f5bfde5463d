package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/transfocator/pkg/report"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(18)
)

// =============================================================================
// HistoryModel - Interactive lens history browser
// =============================================================================

// HistoryModel is the bubbletea model for browsing a report lens by lens.
// The table shows the selected columns; the panel below it shows every
// column of the lens under the cursor.
type HistoryModel struct {
	Report  *report.Report
	Columns []report.Column
	Cursor  int // index into Report.History
	Height  int // visible table rows
	Offset  int
}

// NewHistoryModel creates a browser over rep.
func NewHistoryModel(rep *report.Report, cols []report.Column) HistoryModel {
	return HistoryModel{Report: rep, Columns: cols, Height: 15}
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Report.History)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Cursor--
		case "down", "j":
			m.Cursor++
		case "pgup":
			m.Cursor -= m.Height
		case "pgdown":
			m.Cursor += m.Height
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = n - 1
		case "n":
			m.Cursor = m.nextTF(1)
		case "p":
			m.Cursor = m.nextTF(-1)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-len(report.Columns())/2-10, 5)
	}
	m.Cursor = min(max(m.Cursor, 0), max(n-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

// nextTF returns the index of the first lens of the next (dir > 0) or
// current/previous (dir < 0) transfocator.
func (m HistoryModel) nextTF(dir int) int {
	h := m.Report.History
	if len(h) == 0 {
		return 0
	}
	tf := h[m.Cursor].TF
	if dir > 0 {
		for i := m.Cursor + 1; i < len(h); i++ {
			if h[i].TF != tf {
				return i
			}
		}
		return m.Cursor
	}
	i := m.Cursor
	if i > 0 && h[i-1].TF != tf {
		i--
		tf = h[i].TF
	}
	for i > 0 && h[i-1].TF == tf {
		i--
	}
	return i
}

func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Lens history at %g eV", m.Report.Energy)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n/p next/prev TF  q quit"))
	b.WriteString("\n\n")

	h := m.Report.History
	end := min(m.Offset+m.Height, len(h))

	headers := append([]string{"", "TF"}, report.Headers(m.Columns)...)
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor, h[i].TF}, report.Cells(m.Columns, h[i])...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col <= 1 {
				return listDimStyle
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(h))))
	b.WriteString("\n\n")
	if len(h) > 0 {
		b.WriteString(m.detail())
	}
	return b.String()
}

// detail renders every column of the lens under the cursor in two columns.
func (m HistoryModel) detail() string {
	lens := m.Report.History[m.Cursor]
	all := report.Columns()
	half := (len(all) + 1) / 2

	var left, right strings.Builder
	for i, col := range all {
		line := detailKeyStyle.Render(col.Header) + " " + StyleValue.Render(col.Value(lens)) + "\n"
		if i < half {
			left.WriteString(line)
		} else {
			right.WriteString(line)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(40).Render(left.String()),
		right.String())
}
