// Package markup holds the x/net/html level helpers that run before or beside goquery:
// the header-cell rewrite play-by-play pages need, and the indented dump written next
// to every scraped page for debugging.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PromoteHeaderCells parses r and renames every th element to td.
//
// Play-by-play tables mix th and td inside one row; treating them uniformly keeps
// row and column counting simple.
func PromoteHeaderCells(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Th {
			n.DataAtom = atom.Td
			n.Data = "td"
		}
	})
	return goquery.NewDocumentFromNode(root), nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// Pretty renders the document one node per line, indented by depth.
func Pretty(raw []byte) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	var buf bytes.Buffer
	pretty(&buf, root, 0)
	return buf.Bytes(), nil
}

func pretty(buf *bytes.Buffer, n *html.Node, depth int) {
	indent := strings.Repeat(" ", depth)
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			pretty(buf, c, depth)
		}
		return
	case html.DoctypeNode:
		fmt.Fprintf(buf, "<!DOCTYPE %s>\n", n.Data)
		return
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			fmt.Fprintf(buf, "%s%s\n", indent, html.EscapeString(text))
		}
		return
	case html.CommentNode:
		fmt.Fprintf(buf, "%s<!--%s-->\n", indent, n.Data)
		return
	case html.ElementNode:
		buf.WriteString(indent + "<" + n.Data)
		for _, a := range n.Attr {
			fmt.Fprintf(buf, " %s=\"%s\"", a.Key, html.EscapeString(a.Val))
		}
		buf.WriteString(">\n")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			pretty(buf, c, depth+1)
		}
		if !isVoid(n.DataAtom) {
			fmt.Fprintf(buf, "%s</%s>\n", indent, n.Data)
		}
	}
}

func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
