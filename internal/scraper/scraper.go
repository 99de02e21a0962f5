package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/statscrape/internal/logger"
)

const (
	UserAgent      = "statscrape/1.0 (github.com/pfrederiksen/statscrape)"
	Timeout        = 30 * time.Second
	DefaultRetries = 3
)

// ErrTransient marks failures that were retried and may succeed on a later run.
var ErrTransient = errors.New("transient fetch failure")

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Scraper. Zero values fall back to the package defaults.
type Options struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration
	Logger         *logger.Logger
	Metrics        *logger.Metrics
}

// Scraper handles fetching pages
type Scraper struct {
	client    *http.Client
	retries   int
	userAgent string
	initial   time.Duration
	log       *logger.Logger
	metrics   *logger.Metrics
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.NewMetrics()
	}
	return &Scraper{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		retries:   opts.Retries,
		userAgent: opts.UserAgent,
		initial:   opts.InitialBackoff,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Fetch GETs url and returns the body. Transient failures are retried; once the
// retries are exhausted the returned error wraps ErrTransient.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.log.Info("Fetching page", logger.Fields{"url": url})
	start := time.Now()
	defer func() { s.metrics.RecordTiming("fetch", time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		b, err := s.do(req)
		if err == nil {
			body = b
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.initial
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(s.retries)), ctx)

	notify := func(err error, wait time.Duration) {
		s.metrics.IncrCounter("fetch.retries")
		s.log.Warn("Retrying fetch", logger.Fields{"url": url, "attempt": attempt, "wait": wait.String(), "error": err.Error()})
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		s.metrics.IncrCounter("fetch.failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetching page: %w", ctxErr)
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, fmt.Errorf("fetching page: %w", err)
		}
		return nil, fmt.Errorf("fetching page after %d attempts: %w: %w", attempt, ErrTransient, err)
	}

	s.metrics.IncrCounter("pages.fetched")
	return body, nil
}

func (s *Scraper) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, &StatusError{URL: req.URL.String(), Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// ParseDocument parses a fetched page with goquery.
func ParseDocument(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
