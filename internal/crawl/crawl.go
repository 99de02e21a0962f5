// Package crawl drives a scrape: it fetches each page in turn, creates the output
// directory for it and hands the parsed document to the right extractor.
//
// Work is split into units (one date, one game, one match). A failed unit is logged,
// recorded in the run summary and skipped; the batch carries on with the next unit.
// Only context cancellation and invalid arguments stop a batch early.
package crawl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pfrederiksen/statscrape/internal/bref"
	"github.com/pfrederiksen/statscrape/internal/logger"
	"github.com/pfrederiksen/statscrape/internal/markup"
	"github.com/pfrederiksen/statscrape/internal/nrl"
	"github.com/pfrederiksen/statscrape/internal/scraper"
	"github.com/pfrederiksen/statscrape/internal/storage"
	"github.com/pfrederiksen/statscrape/internal/table"
)

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Kind classifies a unit failure.
type Kind string

const (
	// Transient failures exhausted their fetch retries; a later run may succeed.
	Transient Kind = "transient"
	// FatalForUnit failures (write errors, bad markup, 4xx) will not fix themselves.
	FatalForUnit Kind = "fatal_for_unit"
)

// UnitError reports why one unit of work was abandoned.
type UnitError struct {
	Unit string
	URL  string
	Kind Kind
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Unit, e.Kind, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Classify maps an error onto a failure kind.
func Classify(err error) Kind {
	if errors.Is(err, scraper.ErrTransient) {
		return Transient
	}
	return FatalForUnit
}

// Options configures a Runner.
type Options struct {
	BrefBaseURL  string
	SeasonURL    string
	MatchBaseURL string
	// Workers bounds concurrent match fetches within a season. 1 keeps the crawl
	// strictly sequential.
	Workers        int
	DebugArtifacts bool
	IncludePBP     bool
}

// Runner executes crawls and accumulates a summary.
type Runner struct {
	fetcher Fetcher
	store   *storage.Storage
	log     *logger.Logger
	metrics *logger.Metrics
	opts    Options

	runID     string
	startedAt time.Time

	mu       sync.Mutex
	units    int
	failures []Failure
}

// New creates a Runner. A fresh run id is attached to every log line.
func New(f Fetcher, store *storage.Storage, log *logger.Logger, metrics *logger.Metrics, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.NewMetrics()
	}
	id := uuid.NewString()
	return &Runner{
		fetcher:   f,
		store:     store,
		log:       log.With(logger.Fields{"run_id": id}),
		metrics:   metrics,
		opts:      opts,
		runID:     id,
		startedAt: time.Now().UTC(),
	}
}

// unit runs fn as one unit of work, recording its outcome.
func (r *Runner) unit(name, pageURL string, fn func() error) error {
	err := fn()

	r.mu.Lock()
	r.units++
	if err != nil {
		kind := Classify(err)
		r.failures = append(r.failures, Failure{Unit: name, URL: pageURL, Kind: kind, Error: err.Error()})
		r.mu.Unlock()

		r.metrics.IncrCounter("units.failed")
		r.log.Error("Unit failed, skipping", logger.Fields{"unit": name, "url": pageURL, "kind": string(kind)}, err)
		return &UnitError{Unit: name, URL: pageURL, Kind: kind, Err: err}
	}
	r.mu.Unlock()

	r.metrics.IncrCounter("units.ok")
	return nil
}

func (r *Runner) mkdir(parts ...string) (string, error) {
	dir, err := r.store.Dir(parts...)
	if err != nil {
		return "", err
	}
	r.log.Info("Created directory", logger.Fields{"dir": dir})
	return dir, nil
}

func (r *Runner) writeTables(dir string, tables []table.Table) error {
	for _, t := range tables {
		path, err := r.store.WriteTable(dir, t)
		if err != nil {
			return err
		}
		r.metrics.IncrCounter("tables.written")
		r.log.Info("Wrote table", logger.Fields{"table": t.Key, "rows": len(t.Rows), "path": path})
	}
	return nil
}

func (r *Runner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, []byte, error) {
	raw, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := scraper.ParseDocument(raw)
	if err != nil {
		return nil, nil, err
	}
	return doc, raw, nil
}

// BoxScoreRange extracts box scores for every day from..to inclusive.
func (r *Runner) BoxScoreRange(ctx context.Context, from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("start date %s is after end date %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	r.log.Info("Extracting box scores", logger.Fields{"from": from.Format(time.DateOnly), "to": to.Format(time.DateOnly)})

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := r.BoxScores(ctx, d); err != nil {
			return err
		}
	}
	r.log.Info("Box score range finished", logger.Fields{
		"tables_written": r.metrics.Counter("tables.written"),
		"units_failed":   r.metrics.Counter("units.failed"),
	})
	return nil
}

// BoxScores extracts every game listed for one day into <root>/<YYYY-MM-DD>/<n>/.
// Only a cancelled context is returned as an error.
func (r *Runner) BoxScores(ctx context.Context, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	day := date.Format(time.DateOnly)

	indexURL, err := bref.DayIndexURL(r.opts.BrefBaseURL, date)
	if err != nil {
		return err
	}

	var links []string
	_ = r.unit(day, indexURL, func() error {
		doc, _, err := r.fetchDocument(ctx, indexURL)
		if err != nil {
			return err
		}
		links, err = bref.BoxScoreLinks(doc, r.opts.BrefBaseURL)
		if err != nil {
			return err
		}
		r.log.Info("Found box score links", logger.Fields{"date": day, "count": len(links)})

		_, err = r.mkdir(day)
		return err
	})

	for n, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}
		game := strconv.Itoa(n)
		_ = r.unit(day+"/"+game, link, func() error {
			gameDir, err := r.mkdir(day, game)
			if err != nil {
				return err
			}
			return r.boxScoreGame(ctx, link, gameDir)
		})
	}
	return ctx.Err()
}

func (r *Runner) boxScoreGame(ctx context.Context, link, dir string) error {
	doc, raw, err := r.fetchDocument(ctx, link)
	if err != nil {
		return err
	}
	if r.opts.DebugArtifacts {
		if err := r.store.WritePage(dir, raw); err != nil {
			return err
		}
	}

	tables, unidentified := bref.BoxScoreTables(doc)
	for _, i := range unidentified {
		r.log.Warn("Stats table has no id, using fallback key", logger.Fields{"url": link, "position": i})
	}
	if err := r.writeTables(dir, tables); err != nil {
		return err
	}

	if !r.opts.IncludePBP {
		return nil
	}
	pbpURL, err := bref.PlayByPlayURL(link)
	if err != nil {
		return err
	}
	return r.playByPlay(ctx, pbpURL, dir)
}

// PlayByPlay extracts one play-by-play page into <root>/<dirName>/.
func (r *Runner) PlayByPlay(ctx context.Context, pageURL, dirName string) error {
	_ = r.unit(dirName, pageURL, func() error {
		dir, err := r.mkdir(dirName)
		if err != nil {
			return err
		}
		return r.playByPlay(ctx, pageURL, dir)
	})
	return ctx.Err()
}

func (r *Runner) playByPlay(ctx context.Context, pageURL, dir string) error {
	raw, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}
	doc, err := markup.PromoteHeaderCells(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return r.writeTables(dir, bref.PlayByPlayTables(doc))
}

// Season extracts every linked match of a season into <root>/<year>/<match>/.
func (r *Runner) Season(ctx context.Context, year int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seasonURL := fmt.Sprintf(r.opts.SeasonURL, year)
	yearName := strconv.Itoa(year)
	r.log.Info("Extracting season", logger.Fields{"year": year, "url": seasonURL})

	var refs []nrl.MatchReference
	err := r.unit("season "+yearName, seasonURL, func() error {
		base, err := url.Parse(r.opts.MatchBaseURL)
		if err != nil {
			return fmt.Errorf("parsing match base URL: %w", err)
		}
		yearDir, err := r.mkdir(yearName)
		if err != nil {
			return err
		}
		doc, raw, err := r.fetchDocument(ctx, seasonURL)
		if err != nil {
			return err
		}
		if r.opts.DebugArtifacts {
			if err := r.store.WritePage(yearDir, raw); err != nil {
				return err
			}
		}
		refs = nrl.ListMatches(doc, base)
		return nil
	})
	if err != nil {
		return ctx.Err()
	}
	r.log.Info("Found matches", logger.Fields{"year": year, "count": len(refs)})

	jobs := make([]matchJob, 0, len(refs))
	names := map[string]int{}
	for _, ref := range refs {
		if !ref.SplitOK {
			r.log.Warn("Teams cell has no standalone 'v' separator", logger.Fields{"teams": ref.Teams[0], "url": ref.URL})
		}
		if !ref.DateOK {
			r.log.Warn("Unparsed match date", logger.Fields{"date": ref.DateText, "url": ref.URL})
		}
		name := ref.DirName(year)
		names[name]++
		if n := names[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		jobs = append(jobs, matchJob{ref: ref, dir: name})
	}

	r.runMatches(ctx, yearName, jobs)
	r.log.Info("Season finished", logger.Fields{
		"year":           year,
		"matches":        len(jobs),
		"tables_written": r.metrics.Counter("tables.written"),
		"units_failed":   r.metrics.Counter("units.failed"),
	})
	return ctx.Err()
}

type matchJob struct {
	ref nrl.MatchReference
	dir string
}

// runMatches processes jobs with up to Workers goroutines. Each job owns its
// directory, so workers share nothing but the runner's summary.
func (r *Runner) runMatches(ctx context.Context, yearName string, jobs []matchJob) {
	queue := make(chan matchJob)
	var wg sync.WaitGroup

	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				_ = r.unit(yearName+"/"+job.dir, job.ref.URL, func() error {
					dir, err := r.mkdir(yearName, job.dir)
					if err != nil {
						return err
					}
					return r.match(ctx, job.ref, dir)
				})
			}
		}()
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		queue <- job
	}
	close(queue)
	wg.Wait()
}

// Match extracts one match page into <root>/<dirName>/.
func (r *Runner) Match(ctx context.Context, ref nrl.MatchReference, dirName string) error {
	_ = r.unit(dirName, ref.URL, func() error {
		dir, err := r.mkdir(dirName)
		if err != nil {
			return err
		}
		return r.match(ctx, ref, dir)
	})
	return ctx.Err()
}

func (r *Runner) match(ctx context.Context, ref nrl.MatchReference, dir string) error {
	doc, raw, err := r.fetchDocument(ctx, ref.URL)
	if err != nil {
		return err
	}
	if r.opts.DebugArtifacts {
		if err := r.store.WritePage(dir, raw); err != nil {
			return err
		}
	}

	blocks := nrl.MatchBlocks(doc)
	if len(blocks) == 0 {
		r.log.Warn("No stat blocks found", logger.Fields{"url": ref.URL})
	}
	tables := make([]table.Table, 0, len(blocks))
	for _, b := range blocks {
		r.log.Debug("Found stat block", logger.Fields{"id": b.ID, "kind": b.Kind.String()})
		tables = append(tables, b.Extract())
	}
	return r.writeTables(dir, tables)
}
