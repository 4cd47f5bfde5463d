package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/olekukonko/tablewriter"

	tfio "github.com/matzehuels/transfocator/pkg/io"
	"github.com/matzehuels/transfocator/pkg/report"
)

// Output formats for tabular commands.
const (
	outTable = "table" // styled lipgloss table
	outPlain = "plain" // ASCII table for pipes and logs
	outJSON  = "json"
	outCSV   = "csv"
)

func validateOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s (must be one of %s)", format, strings.Join(allowed, ", "))
}

// grid is a table with optional full-width section rows.
type grid struct {
	headers  []string
	rows     [][]string
	sections map[int]string // row index -> section title shown before it
}

// historyGrid lays out a report's lens history with the selected columns.
// The first transfocator gets a section row too, so every lens sits under
// the name of its transfocator.
func historyGrid(rep *report.Report, cols []report.Column) grid {
	g := grid{headers: report.Headers(cols), sections: map[int]string{}}
	if len(rep.History) > 0 {
		g.sections[0] = rep.History[0].TF
	}
	for _, row := range report.Sections(rep.History) {
		if row.IsHeader() {
			g.sections[len(g.rows)] = row.Header
			continue
		}
		g.rows = append(g.rows, report.Cells(cols, *row.Lens))
	}
	return g
}

// flatten turns section markers into rows whose first cell is the title.
func (g grid) flatten() (rows [][]string, sectionRows map[int]bool) {
	sectionRows = map[int]bool{}
	for i, r := range g.rows {
		if title, ok := g.sections[i]; ok {
			sec := make([]string, len(g.headers))
			sec[0] = title
			sectionRows[len(rows)] = true
			rows = append(rows, sec)
		}
		rows = append(rows, r)
	}
	return rows, sectionRows
}

// renderStyled draws g with lipgloss.
func renderStyled(w io.Writer, g grid) {
	rows, sectionRows := g.flatten()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(g.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleHeader.Padding(0, 1)
			case sectionRows[row]:
				return styleSection.Padding(0, 1)
			case col == 0:
				return StyleDim.Padding(0, 1)
			default:
				return StyleValue.Padding(0, 1).Align(lipgloss.Right)
			}
		})
	fmt.Fprintln(w, t.Render())
}

// renderPlain draws g with tablewriter.
func renderPlain(w io.Writer, g grid) {
	rows, _ := g.flatten()
	t := tablewriter.NewWriter(w)
	t.SetHeader(g.headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.AppendBulk(rows)
	t.Render()
}

func renderGrid(w io.Writer, g grid, format string) {
	if format == outPlain {
		renderPlain(w, g)
		return
	}
	renderStyled(w, g)
}

// writeReport prints rep in the requested format.
func writeReport(w io.Writer, rep *report.Report, cols []report.Column, format string) error {
	switch format {
	case outJSON:
		return tfio.WriteJSON(rep, w)
	case outCSV:
		return tfio.WriteCSV(w, rep.History, cols)
	}
	renderGrid(w, historyGrid(rep, cols), format)
	fmt.Fprintln(w)
	for _, line := range rep.Summary() {
		if k, v, ok := strings.Cut(line, ": "); ok && format != outPlain {
			printKeyValue(w, k, v)
			continue
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// columnsFromFlag resolves a comma-separated --columns value.
func columnsFromFlag(s string) ([]report.Column, error) {
	switch s {
	case "":
		return report.DefaultColumns(), nil
	case "all":
		return report.Columns(), nil
	}
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return report.SelectColumns(names)
}
