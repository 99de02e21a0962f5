package nrl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	seasonBlocks = cascadia.MustCompile("div.m_nrl, div.m_5")
	roundHeading = cascadia.MustCompile("div.m_h")
	roundBody    = cascadia.MustCompile("div.m_b")

	// teamSeparator splits "Melbourne v Parramatta". Only a standalone v counts.
	teamSeparator = regexp.MustCompile(`\s+v\s+`)
	unsafePath    = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// MatchReference is one fixture from a season listing.
type MatchReference struct {
	Round    string
	DateText string
	Date     MatchDate
	DateOK   bool
	Teams    [2]string
	Score    string
	Status   string
	URL      string
	// SplitOK is false when the teams cell had no standalone "v" separator.
	SplitOK bool
}

// DirName returns {year}{month:02}{day:02}_{team1}_{team2}. seasonYear is used when
// the row carried no year. An unparsed date falls back to the raw date text. Team
// names keep only letters, digits, '_' and '-' (spaces become '_'); an empty team is
// left out rather than leaving a trailing separator.
func (m MatchReference) DirName(seasonYear int) string {
	var date string
	if m.DateOK {
		year := m.Date.Year
		if year == 0 {
			year = seasonYear
		}
		date = fmt.Sprintf("%04d%02d%02d", year, int(m.Date.Month), m.Date.Day)
	} else {
		date = pathToken(m.DateText)
		if date == "" {
			date = "undated"
		}
	}
	parts := []string{date}
	for _, team := range m.Teams {
		if tok := pathToken(team); tok != "" {
			parts = append(parts, tok)
		}
	}
	return strings.Join(parts, "_")
}

func pathToken(s string) string {
	s = strings.Join(strings.Fields(s), "_")
	return strings.Trim(unsafePath.ReplaceAllString(s, ""), "_")
}

// SplitTeams splits a "Team A v Team B" cell and canonicalises both names.
// When there is no standalone separator the whole text is team one and team two is
// empty.
func SplitTeams(text string) ([2]string, bool) {
	parts := teamSeparator.Split(strings.TrimSpace(text), 2)
	if len(parts) != 2 {
		return [2]string{CanonicalTeam(text), ""}, false
	}
	return [2]string{CanonicalTeam(parts[0]), CanonicalTeam(parts[1])}, true
}

// ListMatches walks every match block of a season page and returns the fixtures with
// a match link, in page order. base resolves relative match links.
//
// Within a block, each m_h heading sets the round label for the m_b tables after it.
// Rows missing the date or teams cell, or whose teams cell has no link (postponed or
// not yet played), are skipped.
func ListMatches(doc *goquery.Document, base *url.URL) []MatchReference {
	var matches []MatchReference
	doc.FindMatcher(seasonBlocks).Each(func(_ int, block *goquery.Selection) {
		if block.ParentsMatcher(seasonBlocks).Length() > 0 {
			return
		}

		round := ""
		block.Find("div").Each(func(_ int, div *goquery.Selection) {
			switch {
			case roundHeading.Match(div.Nodes[0]):
				round = strings.TrimSpace(div.Find("span").First().Text())
			case roundBody.Match(div.Nodes[0]):
				div.Find("tr").Each(func(i int, tr *goquery.Selection) {
					if i == 0 {
						return
					}
					if ref, ok := matchRow(tr, round, base); ok {
						matches = append(matches, ref)
					}
				})
			}
		})
	})
	return matches
}

func matchRow(tr *goquery.Selection, round string, base *url.URL) (MatchReference, bool) {
	cols := tr.ChildrenFiltered("td")
	if cols.Length() < 2 {
		return MatchReference{}, false
	}

	link := cols.Eq(1).Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return MatchReference{}, false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return MatchReference{}, false
	}

	m := MatchReference{
		Round:    round,
		DateText: strings.Join(strings.Fields(cols.Eq(0).Text()), " "),
		URL:      base.ResolveReference(ref).String(),
	}
	m.Date, m.DateOK = ParseMatchDate(m.DateText)
	m.Teams, m.SplitOK = SplitTeams(cols.Eq(1).Text())
	if cols.Length() > 2 {
		m.Score = strings.Join(strings.Fields(cols.Eq(2).Text()), " ")
	}
	if cols.Length() > 3 {
		m.Status = strings.Join(strings.Fields(cols.Eq(3).Text()), " ")
	}
	return m, true
}
