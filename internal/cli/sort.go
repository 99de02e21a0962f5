package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/statscrape/internal/crawl"
)

// sortFailures orders failures by unit so concurrent runs report them the same way
// every time. Units are compared segment by segment, numerically where both segments
// are numbers, so "2013-05-14/10" sorts after "2013-05-14/9".
func sortFailures(failures []crawl.Failure) {
	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].Unit != failures[j].Unit {
			return compareUnits(failures[i].Unit, failures[j].Unit)
		}
		return failures[i].URL < failures[j].URL
	})
}

// compareUnits returns true if unit a should come before unit b
func compareUnits(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")

	for k := 0; k < len(as) && k < len(bs); k++ {
		if as[k] == bs[k] {
			continue
		}
		if isDigits(as[k]) && isDigits(bs[k]) && len(as[k]) != len(bs[k]) {
			return len(as[k]) < len(bs[k])
		}
		return as[k] < bs[k]
	}
	return len(as) < len(bs)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
