package nrl

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/statscrape/internal/table"
)

const matchPage = `
<html><body>
<div id="tab-mdHalf-0-data">
	<table>
		<tr><th>Melbourne</th><th>Statistic</th><th>Parramatta</th></tr>
		<tr><td>52</td><th>Possession %</th><td>48</td></tr>
		<tr><td>1,204</td><td>Metres <b>gained</b></td><td>1,010</td></tr>
		<tr></tr>
	</table>
</div>
<div id="tab-ps-1-tackles-data">
	<table>
		<tr><th>Player</th><th>Tackles</th></tr>
		<tr><td><a href="/p/1">Cameron Smith</a><br>Hooker</td><td>5,2 tackles</td></tr>
	</table>
</div>
<div id="page-scorecard-data">
	<table>
		<tr><th>Team</th><td>Tries</td></tr>
		<tr><td>Melbourne</td><td>Slater 12'<br>Inglis 55'</td></tr>
	</table>
</div>
<div id="tab-unknown-data"><table><tr><td>ignored</td></tr></table></div>
</body></html>`

func TestMatchBlocks(t *testing.T) {
	blocks := MatchBlocks(mustDoc(t, matchPage))

	var files []string
	for _, b := range blocks {
		files = append(files, b.File)
	}
	want := "game_stats_total.csv player_stats_tackles_first_half.csv game_scorecard.csv"
	if strings.Join(files, " ") != want {
		t.Errorf("files = %q, want %q", files, want)
	}
}

func TestExtract_Paired(t *testing.T) {
	blocks := MatchBlocks(mustDoc(t, matchPage))

	out, err := table.Marshal(blocks[0].Extract(), table.Legacy)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := "Statistic, Melbourne, Parramatta\n" +
		"Possession %, 52, 48\n" +
		"Metres gained, 1;204, 1;010\n"
	if string(out) != want {
		t.Errorf("paired output =\n%q\nwant\n%q", out, want)
	}
}

func TestExtract_PlayerJoinsTextNodes(t *testing.T) {
	blocks := MatchBlocks(mustDoc(t, matchPage))

	tbl := blocks[1].Extract()
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}

	out, _ := table.Marshal(tbl, table.Legacy)
	want := "Player, Tackles\nCameron Smith | Hooker, 5;2 tackles\n"
	if string(out) != want {
		t.Errorf("player output = %q, want %q", out, want)
	}
}

func TestExtract_GameUsesHeaderAndDataCells(t *testing.T) {
	blocks := MatchBlocks(mustDoc(t, matchPage))

	out, _ := table.Marshal(blocks[2].Extract(), table.Legacy)
	want := "Team, Tries\nMelbourne, Slater 12' | Inglis 55'\n"
	if string(out) != want {
		t.Errorf("scorecard output = %q, want %q", out, want)
	}
}

func TestExtract_NoStrayCommas(t *testing.T) {
	for _, b := range MatchBlocks(mustDoc(t, matchPage)) {
		for _, row := range b.Extract().Rows {
			for _, f := range row.Fields() {
				if strings.Contains(f, ",") {
					t.Errorf("%s: field %q contains a comma", b.File, f)
				}
			}
		}
	}
}

func TestExtract_LineBreaksInsideCells(t *testing.T) {
	page := `<html><body>
<div id="tab-ps-0-tackles-data"><table>
	<tr><td>Cameron
		Smith</td><td>5</td></tr>
</table></div>
<div id="tab-mdHalf-0-data"><table>
	<tr><td>52</td><th>Possession
		%</th><td>48</td></tr>
</table></div>
</body></html>`

	blocks := MatchBlocks(mustDoc(t, page))
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	tests := []struct {
		file string
		want string
	}{
		{"player_stats_tackles_total.csv", "Cameron Smith, 5\n"},
		{"game_stats_total.csv", "Possession %, 52, 48\n"},
	}
	for i, tt := range tests {
		if blocks[i].File != tt.file {
			t.Fatalf("block %d = %s, want %s", i, blocks[i].File, tt.file)
		}
		out, err := table.Marshal(blocks[i].Extract(), table.Legacy)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(out) != tt.want {
			t.Errorf("%s = %q, want %q", tt.file, out, tt.want)
		}
	}
}

func TestRowValues(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		want   StatRow
		wantOK bool
	}{
		{
			name:   "all header",
			row:    `<tr><th>10</th><th>Tries</th><th>8</th></tr>`,
			want:   StatRow{Label: "Tries", A: "10", B: "8"},
			wantOK: true,
		},
		{
			name:   "mixed",
			row:    `<tr><td>10</td><th>Tries</th><td>8</td></tr>`,
			want:   StatRow{Label: "Tries", A: "10", B: "8"},
			wantOK: true,
		},
		{
			name:   "all data",
			row:    `<tr><td>10</td><td>Line <i>breaks</i></td><td>8</td></tr>`,
			want:   StatRow{Label: "Line breaks", A: "10", B: "8"},
			wantOK: true,
		},
		{name: "empty row", row: `<tr></tr>`},
		{name: "too few header cells", row: `<tr><th>Tries</th></tr>`},
		{name: "mixed with one data cell", row: `<tr><th>Tries</th><td>8</td></tr>`},
		{name: "too few data cells", row: `<tr><td>10</td><td>Tries</td></tr>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, "<table>"+tt.row+"</table>")
			got, ok := RowValues(doc.Find("tr").First())
			if ok != tt.wantOK {
				t.Fatalf("RowValues() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("RowValues() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatBlocks(t *testing.T) {
	// 5 player categories, team totals and game totals per segment, plus the scorecard.
	if got := len(StatBlocks); got != 3*7+1 {
		t.Errorf("len(StatBlocks) = %d, want 22", got)
	}

	tests := []struct {
		id   string
		file string
		kind Kind
	}{
		{"tab-ps-0-summary-data", "player_stats_summary_total.csv", KindPlayer},
		{"tab-ps-2-kicks-data", "player_stats_kicks_second_half.csv", KindPlayer},
		{"tab-tsHalf-1-data", "team_stats_first_half.csv", KindPaired},
		{"tab-mdHalf-2-data", "game_stats_second_half.csv", KindPaired},
		{"page-scorecard-data", "game_scorecard.csv", KindGame},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			b, ok := StatBlocks[tt.id]
			if !ok {
				t.Fatalf("StatBlocks missing %q", tt.id)
			}
			if b.File != tt.file || b.Kind != tt.kind {
				t.Errorf("StatBlocks[%q] = %+v, want file %q kind %v", tt.id, b, tt.file, tt.kind)
			}
		})
	}
}
