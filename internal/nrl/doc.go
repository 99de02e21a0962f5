// Package nrl extracts rugby-league statistics from nrlstats.com pages.
//
// A season index lists one match block per round; ListMatches walks those blocks into
// MatchReference values. A match page holds labelled stat blocks (player categories,
// team totals, game totals, scorecard), one per game segment; the StatBlocks table maps
// each block id to its output file and extraction strategy.
package nrl
