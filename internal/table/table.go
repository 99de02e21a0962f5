package table

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxSpan is the widest colspan honoured. HTML caps colspan at 1000.
const MaxSpan = 1000

// Cell is one th/td value and the number of grid columns it occupies.
type Cell struct {
	Value string
	Span  int
}

// Row is an ordered sequence of cells.
type Row []Cell

// Table is an extracted grid identified by the key that names its output file.
type Table struct {
	Key  string
	Rows []Row
}

// Width returns the number of grid columns the row covers.
func (r Row) Width() int {
	w := 0
	for _, c := range r {
		w += spanOf(c)
	}
	return w
}

// Fields expands the row into grid columns: a cell spanning N columns becomes its
// value followed by N-1 empty strings.
func (r Row) Fields() []string {
	out := make([]string, 0, r.Width())
	for _, c := range r {
		out = append(out, c.Value)
		for i := 1; i < spanOf(c); i++ {
			out = append(out, "")
		}
	}
	return out
}

// TextRow builds a row of single-column cells.
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Cell{Value: v, Span: 1}
	}
	return row
}

func spanOf(c Cell) int {
	if c.Span < 1 {
		return 1
	}
	return min(c.Span, MaxSpan)
}

// FromSelection converts a table element into a Table. Every tr contributes a row;
// every th and td in it contributes a cell whose value is the flattened text of all
// its descendants.
func FromSelection(key string, sel *goquery.Selection) Table {
	t := Table{Key: key}
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := Row{}
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, Cell{
				Value: CellText(cell),
				Span:  ParseSpan(cell.AttrOr("colspan", "")),
			})
		})
		t.Rows = append(t.Rows, row)
	})
	return t
}

// CellText flattens a cell's descendant text onto one line.
func CellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// ParseSpan reads a colspan attribute. Missing, non-numeric and non-positive values
// all degrade to 1; values above MaxSpan are clamped to it, as browsers do.
func ParseSpan(attr string) int {
	n, err := strconv.Atoi(strings.TrimSpace(attr))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxSpan)
}
