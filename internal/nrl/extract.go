package nrl

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/pfrederiksen/statscrape/internal/table"
	"golang.org/x/net/html"
)

// multiValueSep joins the separate text nodes of one tabular cell.
const multiValueSep = " | "

var blockCandidates = cascadia.MustCompile("div[id]")

// Block is a stat block located on a match page.
type Block struct {
	StatBlock
	Selection *goquery.Selection
}

// MatchBlocks returns the known stat blocks of a match page in document order.
func MatchBlocks(doc *goquery.Document) []Block {
	var blocks []Block
	doc.FindMatcher(blockCandidates).Each(func(_ int, div *goquery.Selection) {
		id, _ := div.Attr("id")
		sb, ok := StatBlocks[id]
		if !ok {
			return
		}
		blocks = append(blocks, Block{StatBlock: sb, Selection: div})
	})
	return blocks
}

// Extract converts a block into a table keyed by its output file.
func (b Block) Extract() table.Table {
	t := table.Table{Key: b.File}
	b.Selection.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		switch b.Kind {
		case KindPaired:
			if sr, ok := RowValues(tr); ok {
				t.Rows = append(t.Rows, sr.Row())
			}
		case KindPlayer:
			cells := tr.ChildrenFiltered("th")
			if cells.Length() == 0 {
				cells = tr.ChildrenFiltered("td")
			}
			t.Rows = append(t.Rows, tabularRow(cells))
		case KindGame:
			t.Rows = append(t.Rows, tabularRow(tr.ChildrenFiltered("th,td")))
		}
	})
	return t
}

func tabularRow(cells *goquery.Selection) table.Row {
	row := make(table.Row, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		row = append(row, table.Cell{Value: TabularValue(cell), Span: 1})
	})
	return row
}

// TabularValue joins a cell's text nodes with " | " after replacing commas with
// semicolons, so multi-part cells keep their structure without breaking columns.
func TabularValue(cell *goquery.Selection) string {
	parts := textNodes(cell)
	for i, p := range parts {
		parts[i] = table.SanitizeValue(p)
	}
	return strings.TrimSpace(strings.Join(parts, multiValueSep))
}

// StatRow is one paired statistic.
type StatRow struct {
	Label string
	A     string
	B     string
}

// Row renders the statistic as label, team A, team B.
func (s StatRow) Row() table.Row {
	return table.TextRow(
		table.SanitizeValue(s.Label),
		table.SanitizeValue(s.A),
		table.SanitizeValue(s.B),
	)
}

// RowValues reads a paired statistic from a row. Pages place the label differently:
//
//   - only th cells: A = th[0], label = th[1], B = th[2]
//   - th and td mixed: A = td[0], B = td[1], label = th[0]
//   - only td cells: A = td[0], label = td[1], B = td[2]
//
// Rows with no cells, or too few for their layout, yield false.
func RowValues(tr *goquery.Selection) (StatRow, bool) {
	tds := tr.ChildrenFiltered("td")
	ths := tr.ChildrenFiltered("th")

	switch {
	case tds.Length() == 0 && ths.Length() == 0:
		return StatRow{}, false
	case tds.Length() == 0:
		if ths.Length() < 3 {
			return StatRow{}, false
		}
		return StatRow{A: spacedText(ths.Eq(0)), Label: spacedText(ths.Eq(1)), B: spacedText(ths.Eq(2))}, true
	case ths.Length() > 0:
		if tds.Length() < 2 {
			return StatRow{}, false
		}
		return StatRow{A: spacedText(tds.Eq(0)), B: spacedText(tds.Eq(1)), Label: spacedText(ths.Eq(0))}, true
	default:
		if tds.Length() < 3 {
			return StatRow{}, false
		}
		return StatRow{A: spacedText(tds.Eq(0)), Label: spacedText(tds.Eq(1)), B: spacedText(tds.Eq(2))}, true
	}
}

// spacedText joins a cell's text nodes with single spaces.
func spacedText(cell *goquery.Selection) string {
	return strings.TrimSpace(strings.Join(textNodes(cell), " "))
}

// textNodes returns the non-empty text nodes under sel in document order, each with
// its whitespace collapsed to single spaces so no value spans lines.
func textNodes(sel *goquery.Selection) []string {
	var out []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				out = append(out, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range sel.Nodes {
		visit(n)
	}
	return out
}
