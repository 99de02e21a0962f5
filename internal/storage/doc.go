// Package storage writes extracted tables and page dumps under the output root.
//
// Every write takes an explicit directory; the package never changes the process
// working directory. Layout is <root>/<date-or-year>/[<match-or-game>/]<table>.csv.
// Re-running a crawl overwrites files in place.
package storage
