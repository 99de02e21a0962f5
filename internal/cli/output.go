package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/statscrape/internal/crawl"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteSummary writes the run summary in the specified format
func WriteSummary(w io.Writer, summary crawl.Summary, format OutputFormat) error {
	sortFailures(summary.Failures)

	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeText(w, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, summary crawl.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, summary crawl.Summary) error {
	elapsed := summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond)

	fmt.Fprintf(w, "Run %s finished in %s\n", summary.RunID, elapsed)
	fmt.Fprintf(w, "Output: %s\n", summary.OutputDir)
	fmt.Fprintf(w, "Units: %d ok, %d failed\n", summary.Units-summary.Failed, summary.Failed)

	counters := summary.Metrics.Counters
	fmt.Fprintf(w, "Pages fetched: %d, tables written: %d\n", counters["pages.fetched"], counters["tables.written"])
	if fetch, ok := summary.Metrics.Timings["fetch"]; ok && fetch.Count > 0 {
		fmt.Fprintf(w, "Fetch time: %d requests, avg %s, max %s\n", fetch.Count, fetch.Average, fetch.Max)
	}

	if len(summary.Failures) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nFailed units (%d):\n", len(summary.Failures))
	for _, f := range summary.Failures {
		fmt.Fprintf(w, "  %s [%s]: %s\n", f.Unit, f.Kind, f.Error)
		if f.URL != "" {
			fmt.Fprintf(w, "       URL: %s\n", f.URL)
		}
	}
	return nil
}
