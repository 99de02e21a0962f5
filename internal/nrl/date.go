package nrl

import (
	"strings"
	"time"
)

// matchDateLayouts are tried in order. Layouts without a year leave it at zero.
var matchDateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2 Jan", false},
	{"Mon 2 Jan", false},
	{"2 January", false},
	{"Monday 2 January", false},
	{"Jan 2", false},
	{"2 Jan 2006", true},
	{"Mon 2 Jan 2006", true},
	{"2 January 2006", true},
	{"Monday 2 January 2006", true},
	{"02/01/2006", true},
}

// MatchDate is a day and month with an optional year.
type MatchDate struct {
	Day   int
	Month time.Month
	Year  int
}

// ParseMatchDate reads the date cell of a season listing, e.g. "16 Mar" or
// "Fri 16 Mar 2007". Spacing and underscores are normalised first. Returns false when
// no layout matches.
func ParseMatchDate(text string) (MatchDate, bool) {
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "_", " ")), " ")
	if text == "" {
		return MatchDate{}, false
	}
	text = strings.TrimSuffix(text, ",")
	text = strings.ReplaceAll(text, ",", "")

	for _, l := range matchDateLayouts {
		t, err := time.Parse(l.layout, text)
		if err != nil {
			continue
		}
		d := MatchDate{Day: t.Day(), Month: t.Month()}
		if l.hasYear {
			d.Year = t.Year()
		}
		return d, true
	}
	return MatchDate{}, false
}
