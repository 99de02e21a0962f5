package bref

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/statscrape/internal/markup"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

func TestDayIndexURL(t *testing.T) {
	date := time.Date(2013, time.May, 16, 0, 0, 0, 0, time.UTC)

	got, err := DayIndexURL("http://www.basketball-reference.com/", date)
	if err != nil {
		t.Fatalf("DayIndexURL() error = %v", err)
	}

	want := "http://www.basketball-reference.com/boxscores/index.cgi?day=16&month=5&year=2013"
	if got != want {
		t.Errorf("DayIndexURL() = %q, want %q", got, want)
	}
}

func TestBoxScoreLinks(t *testing.T) {
	doc := mustDoc(t, `
		<div class="game_summary">
			<a href="/boxscores/201305160IND.html">Box Score</a>
			<a href="/teams/IND/2013.html">Indiana</a>
		</div>
		<div class="game_summary">
			<a href="/boxscores/201305160OKC.html"> Box Score </a>
		</div>`)

	links, err := BoxScoreLinks(doc, "http://www.basketball-reference.com")
	if err != nil {
		t.Fatalf("BoxScoreLinks() error = %v", err)
	}

	want := []string{
		"http://www.basketball-reference.com/boxscores/201305160IND.html",
		"http://www.basketball-reference.com/boxscores/201305160OKC.html",
	}
	if strings.Join(links, " ") != strings.Join(want, " ") {
		t.Errorf("BoxScoreLinks() = %q, want %q", links, want)
	}
}

func TestPlayByPlayURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{
			in:   "http://www.basketball-reference.com/boxscores/201305140SAS.html",
			want: "http://www.basketball-reference.com/boxscores/pbp/201305140SAS.html",
		},
		{in: "http://www.basketball-reference.com/teams/SAS/2013.html", wantErr: true},
		{in: "http://www.basketball-reference.com/boxscores/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := PlayByPlayURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PlayByPlayURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PlayByPlayURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBoxScoreTables_ThreeIdentified(t *testing.T) {
	doc := mustDoc(t, `
		<table class="sortable stats_table" id="basic"><tr><th>Starters</th></tr></table>
		<table class="stats_table" id="advanced"><tr><th>TS%</th></tr></table>
		<table class="stats_table" id="four-factors"><tr><th>Pace</th></tr></table>
		<table class="suppress_all" id="line_score"><tr><th>1</th></tr></table>`)

	tables, unidentified := BoxScoreTables(doc)
	if len(tables) != 3 {
		t.Fatalf("got %d tables, want 3", len(tables))
	}
	if len(unidentified) != 0 {
		t.Errorf("unidentified = %v, want none", unidentified)
	}

	for i, want := range []string{"basic", "advanced", "four-factors"} {
		if tables[i].Key != want {
			t.Errorf("table %d key = %q, want %q", i, tables[i].Key, want)
		}
	}
}

func TestBoxScoreTables_FallbackAndDuplicateKeys(t *testing.T) {
	doc := mustDoc(t, `
		<table class="stats_table"><tr><td>a</td></tr></table>
		<table class="stats_table" id=""><tr><td>b</td></tr></table>
		<table class="stats_table" id="basic"><tr><td>c</td></tr></table>
		<table class="stats_table" id="basic"><tr><td>d</td></tr></table>`)

	tables, unidentified := BoxScoreTables(doc)

	var keys []string
	for _, tbl := range tables {
		keys = append(keys, tbl.Key)
	}
	want := "unidentified unidentified_2 basic basic_2"
	if strings.Join(keys, " ") != want {
		t.Errorf("keys = %q, want %q", keys, want)
	}
	if len(unidentified) != 2 || unidentified[0] != 0 || unidentified[1] != 1 {
		t.Errorf("unidentified = %v, want [0 1]", unidentified)
	}
}

func TestPlayByPlayTables(t *testing.T) {
	page := `
		<table class="stats_table" id="box_sas_basic"><tr><th>x</th></tr></table>
		<table class="stats_table" id="box_mem_basic"><tr><th>x</th></tr></table>
		<table class="stats_table" id="line_score"><tr><th>x</th></tr></table>
		<table class="no_highlight stats_table">
			<tr><th colspan="6">1st Quarter</th></tr>
			<tr><th>Time</th><td>San Antonio</td><th>Score</th><td>Memphis</td></tr>
			<tr><td>12:00.0</td><td><a href="/players/d/duncati01.html">T. Duncan</a> makes 2-pt shot</td><td>2-0</td><td></td></tr>
		</table>`

	doc, err := markup.PromoteHeaderCells(strings.NewReader(page))
	if err != nil {
		t.Fatalf("PromoteHeaderCells() error = %v", err)
	}

	tables := PlayByPlayTables(doc)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if tables[0].FileName() != "PBP.csv" {
		t.Errorf("file name = %q, want PBP.csv", tables[0].FileName())
	}
	if got := tables[0].Rows[0].Width(); got != 6 {
		t.Errorf("quarter header width = %d, want 6", got)
	}
	if got := tables[0].Rows[2][1].Value; got != "T. Duncan makes 2-pt shot" {
		t.Errorf("event cell = %q", got)
	}
}

func TestSanitizeKey(t *testing.T) {
	if got := sanitizeKey("box/sas basic"); got != "box_sas_basic" {
		t.Errorf("sanitizeKey() = %q, want box_sas_basic", got)
	}
}
