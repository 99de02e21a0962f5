package nrl

import "fmt"

// Kind selects how a stat block is turned into rows.
type Kind int

const (
	// KindPlayer is tabular: each row uses its th cells, or its td cells when it has
	// no th.
	KindPlayer Kind = iota
	// KindGame is tabular: each row uses all th and td cells in order.
	KindGame
	// KindPaired reads each row as a (label, team A, team B) statistic.
	KindPaired
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindGame:
		return "game"
	case KindPaired:
		return "paired"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Segment is the part of the game a block covers.
type Segment int

const (
	SegmentTotal Segment = iota
	SegmentFirstHalf
	SegmentSecondHalf
)

var segmentNames = [...]string{"total", "first_half", "second_half"}

func (s Segment) String() string { return segmentNames[s] }

// StatBlock describes one labelled block on a match page.
type StatBlock struct {
	ID   string
	File string
	Kind Kind
}

var playerCategories = []string{"summary", "points", "runs", "tackles", "kicks"}

// StatBlocks maps element ids to their output description. Ids not listed here are
// ignored by the extractor.
var StatBlocks = buildStatBlocks()

func buildStatBlocks() map[string]StatBlock {
	blocks := make(map[string]StatBlock)
	add := func(b StatBlock) { blocks[b.ID] = b }

	for seg := SegmentTotal; seg <= SegmentSecondHalf; seg++ {
		for _, cat := range playerCategories {
			add(StatBlock{
				ID:   fmt.Sprintf("tab-ps-%d-%s-data", seg, cat),
				File: fmt.Sprintf("player_stats_%s_%s.csv", cat, seg),
				Kind: KindPlayer,
			})
		}
		add(StatBlock{
			ID:   fmt.Sprintf("tab-tsHalf-%d-data", seg),
			File: fmt.Sprintf("team_stats_%s.csv", seg),
			Kind: KindPaired,
		})
		add(StatBlock{
			ID:   fmt.Sprintf("tab-mdHalf-%d-data", seg),
			File: fmt.Sprintf("game_stats_%s.csv", seg),
			Kind: KindPaired,
		})
	}
	add(StatBlock{ID: "page-scorecard-data", File: "game_scorecard.csv", Kind: KindGame})

	return blocks
}
