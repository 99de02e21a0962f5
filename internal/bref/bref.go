// Package bref locates statistics tables on basketball-reference.com box score and
// play-by-play pages and builds the URLs the crawler visits.
package bref

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/google/go-querystring/query"
	"github.com/pfrederiksen/statscrape/internal/table"
)

const (
	// UnidentifiedKey names box-score tables that carry no id.
	UnidentifiedKey = "unidentified"
	// PBPKey names the id-less play-by-play table.
	PBPKey = "PBP"
	// pbpSkip is the number of leading stats tables on a play-by-play page that repeat
	// the box score.
	pbpSkip = 3
)

var (
	statsTables   = cascadia.MustCompile("table.stats_table")
	boxScoreLinks = cascadia.MustCompile("a[href]")
)

// indexQuery is the query string of the daily scores index.
type indexQuery struct {
	Month int `url:"month"`
	Day   int `url:"day"`
	Year  int `url:"year"`
}

// DayIndexURL returns the scores index for one calendar day.
func DayIndexURL(base string, date time.Time) (string, error) {
	v, err := query.Values(indexQuery{Month: int(date.Month()), Day: date.Day(), Year: date.Year()})
	if err != nil {
		return "", fmt.Errorf("encoding index query: %w", err)
	}
	return strings.TrimRight(base, "/") + "/boxscores/index.cgi?" + v.Encode(), nil
}

// BoxScoreLinks returns absolute URLs of every "Box Score" link on a day index page,
// in page order.
func BoxScoreLinks(doc *goquery.Document, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	var links []string
	doc.FindMatcher(boxScoreLinks).Each(func(_ int, a *goquery.Selection) {
		if strings.TrimSpace(a.Text()) != "Box Score" {
			return
		}
		href, _ := a.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, baseURL.ResolveReference(ref).String())
	})
	return links, nil
}

// PlayByPlayURL maps a box score URL (/boxscores/201305140SAS.html) to its
// play-by-play page (/boxscores/pbp/201305140SAS.html).
func PlayByPlayURL(boxScoreURL string) (string, error) {
	u, err := url.Parse(boxScoreURL)
	if err != nil {
		return "", fmt.Errorf("parsing box score URL: %w", err)
	}
	dir, file := path.Split(u.Path)
	if file == "" || !strings.HasSuffix(strings.TrimSuffix(dir, "/"), "boxscores") {
		return "", fmt.Errorf("not a box score URL: %s", boxScoreURL)
	}
	u.Path = dir + "pbp/" + file
	return u.String(), nil
}

// BoxScoreTables returns every stats table on a box score page keyed by its id.
// Tables without an id get UnidentifiedKey; repeated keys are suffixed _2, _3...
// The second result lists the positions of id-less tables so callers can report them.
func BoxScoreTables(doc *goquery.Document) ([]table.Table, []int) {
	keys := newKeySet()
	var out []table.Table
	var unidentified []int
	doc.FindMatcher(statsTables).Each(func(i int, sel *goquery.Selection) {
		key, ok := tableID(sel)
		if !ok {
			key = UnidentifiedKey
			unidentified = append(unidentified, i)
		}
		out = append(out, table.FromSelection(keys.unique(key), sel))
	})
	return out, unidentified
}

// PlayByPlayTables returns the stats tables of a play-by-play page after the leading
// box-score duplicates. The doc should already have had its header cells promoted
// (see markup.PromoteHeaderCells). The id-less table is the play-by-play log and is
// keyed PBPKey.
func PlayByPlayTables(doc *goquery.Document) []table.Table {
	keys := newKeySet()
	var out []table.Table
	doc.FindMatcher(statsTables).Each(func(i int, sel *goquery.Selection) {
		if i < pbpSkip {
			return
		}
		key, ok := tableID(sel)
		if !ok {
			key = PBPKey
		}
		out = append(out, table.FromSelection(keys.unique(key), sel))
	})
	return out
}

func tableID(sel *goquery.Selection) (string, bool) {
	id, ok := sel.Attr("id")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", false
	}
	return sanitizeKey(id), true
}

// sanitizeKey keeps ids usable as file names.
func sanitizeKey(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, id)
}

type keySet map[string]int

func newKeySet() keySet { return keySet{} }

func (k keySet) unique(key string) string {
	k[key]++
	if n := k[key]; n > 1 {
		return fmt.Sprintf("%s_%d", key, n)
	}
	return key
}
