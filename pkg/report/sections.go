package report

import (
	"fmt"

	"github.com/matzehuels/transfocator/pkg/propagation"
)

// Row is one line of the history table: either a section header or a lens.
type Row struct {
	Header string
	Lens   *propagation.LensResult
}

// IsHeader reports whether the row introduces a new section.
func (r Row) IsHeader() bool { return r.Lens == nil }

// Sections interleaves history with header rows. A header naming the next
// transfocator is inserted where the transfocator changes, and a
// "Block n" header where only the housing changes.
func Sections(history []propagation.LensResult) []Row {
	rows := make([]Row, 0, len(history)+4)
	for i := range history {
		rows = append(rows, Row{Lens: &history[i]})
		if i == len(history)-1 {
			break
		}
		cur, next := history[i], history[i+1]
		switch {
		case cur.TF != next.TF:
			rows = append(rows, Row{Header: next.TF})
		case cur.Block != next.Block:
			rows = append(rows, Row{Header: fmt.Sprintf("Block %d", next.Block)})
		}
	}
	return rows
}
