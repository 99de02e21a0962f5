package crawl

import (
	"time"

	"github.com/pfrederiksen/statscrape/internal/logger"
)

// Failure records one abandoned unit.
type Failure struct {
	Unit  string `json:"unit"`
	URL   string `json:"url,omitempty"`
	Kind  Kind   `json:"kind"`
	Error string `json:"error"`
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	OutputDir  string          `json:"output_dir"`
	Units      int             `json:"units"`
	Failed     int             `json:"failed"`
	Failures   []Failure       `json:"failures,omitempty"`
	Metrics    logger.Snapshot `json:"metrics"`
}

// Summary snapshots the run so far.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	failures := make([]Failure, len(r.failures))
	copy(failures, r.failures)

	return Summary{
		RunID:      r.runID,
		StartedAt:  r.startedAt,
		FinishedAt: time.Now().UTC(),
		OutputDir:  r.store.Root(),
		Units:      r.units,
		Failed:     len(failures),
		Failures:   failures,
		Metrics:    r.metrics.GetSnapshot(),
	}
}
