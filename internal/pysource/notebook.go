package pysource

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CellRange maps a byte range of the concatenated virtual source back to
// the originating notebook cell (spec §9 notebook-cell assumption:
// "independent statement blocks in the module scope, left-to-right
// order, single shared module scope across cells"). Grounded on ruff's
// jupyter/notebook.rs cell-to-source mapping, reimplemented without its
// incremental re-concatenation machinery since pyglass treats a notebook
// as one flat virtual module per open.
type CellRange struct {
	CellIndex int
	Start     int
	End       int
}

// Notebook is a concatenated `.ipynb` document: one virtual source file
// plus the table needed to map diagnostics back to cells.
type Notebook struct {
	Source string
	Cells  []CellRange
}

type ipynbDocument struct {
	Cells []ipynbCell `json:"cells"`
}

type ipynbCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// ParseNotebook concatenates a `.ipynb` document's code cells, left to
// right, into one virtual module-scope source (spec §9).
func ParseNotebook(data []byte) (*Notebook, error) {
	var doc ipynbDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pysource: invalid notebook document: %w", err)
	}

	var b strings.Builder
	nb := &Notebook{}
	cellIndex := 0
	for _, cell := range doc.Cells {
		if cell.CellType != "code" {
			continue
		}
		text, err := decodeCellSource(cell.Source)
		if err != nil {
			return nil, err
		}
		start := b.Len()
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
		nb.Cells = append(nb.Cells, CellRange{CellIndex: cellIndex, Start: start, End: b.Len()})
		cellIndex++
	}
	nb.Source = b.String()
	return nb, nil
}

// decodeCellSource handles both of nbformat's two legal encodings for a
// cell's `source` field: a single string, or a list of lines.
func decodeCellSource(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var asLines []string
	if err := json.Unmarshal(raw, &asLines); err == nil {
		return strings.Join(asLines, ""), nil
	}
	return "", fmt.Errorf("pysource: unrecognized notebook cell source encoding")
}

// CellForOffset returns the cell index owning byte offset off in the
// notebook's concatenated source, or -1 if out of range.
func (nb *Notebook) CellForOffset(off int) int {
	for _, c := range nb.Cells {
		if off >= c.Start && off < c.End {
			return c.CellIndex
		}
	}
	return -1
}
