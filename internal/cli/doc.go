// Package cli implements the command-line interface for statscrape.
//
// The cli package provides the Cobra-based CLI with one subcommand per crawl
// (boxscores, pbp, season, match), resolves settings from flags, the environment and an
// optional .env file, and reports each run as a text or JSON summary. It wires the
// scraper, storage and crawl packages together.
//
// Exit codes: 0 when every unit succeeded, 1 on a setup error, 3 when the run finished
// but at least one unit was skipped.
package cli
