package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/pfrederiksen/statscrape/internal/config"
	"github.com/pfrederiksen/statscrape/internal/crawl"
	"github.com/pfrederiksen/statscrape/internal/logger"
	"github.com/pfrederiksen/statscrape/internal/nrl"
	"github.com/pfrederiksen/statscrape/internal/scraper"
	"github.com/pfrederiksen/statscrape/internal/storage"
	"github.com/pfrederiksen/statscrape/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitUnitsFailed = 3
)

// ErrUnitsFailed is returned when a run completed but skipped at least one unit.
var ErrUnitsFailed = errors.New("one or more units failed")

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	outputDir      string
	timeout        time.Duration
	retries        int
	logLevel       string
	dialect        string
	envFile        string
	format         string
	debugArtifacts bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "statscrape",
		Short: "Extract sports statistics tables into CSV files",
		Long: `statscrape downloads basketball-reference box scores and play-by-play pages
and nrlstats rugby league season and match pages, and writes every statistics
table it finds to a CSV file under the output directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.Default()
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.outputDir, "output-dir", defaults.OutputDir, "Root directory for extracted files")
	pf.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Per-request timeout")
	pf.IntVar(&opts.retries, "retries", defaults.Retries, "Retries per page on transient failures")
	pf.StringVar(&opts.logLevel, "log-level", string(defaults.LogLevel), "Log level: debug, info, warn or error")
	pf.StringVar(&opts.dialect, "dialect", string(defaults.Dialect), "CSV dialect: legacy or rfc4180")
	pf.StringVar(&opts.envFile, "env-file", "", "Load settings from this .env file (default .env if present)")
	pf.StringVar(&opts.format, "format", "text", "Summary format: text or json")
	pf.BoolVar(&opts.debugArtifacts, "debug-artifacts", defaults.DebugArtifacts, "Save each fetched page and an indented dump next to its tables")

	cmd.AddCommand(
		newBoxScoresCmd(opts),
		newPlayByPlayCmd(opts),
		newSeasonCmd(opts),
		newMatchCmd(opts),
	)
	return cmd
}

func newBoxScoresCmd(opts *rootOptions) *cobra.Command {
	var date, from, to string
	var pbp bool

	cmd := &cobra.Command{
		Use:   "boxscores",
		Short: "Extract every box score for a day or a range of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseDateRange(date, from, to)
			if err != nil {
				return err
			}
			return opts.run(cmd, nil, func(o *crawl.Options) { o.IncludePBP = pbp },
				func(ctx context.Context, r *crawl.Runner) error {
					return r.BoxScoreRange(ctx, start, end)
				})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Single day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "First day of a range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of a range, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&pbp, "pbp", false, "Also extract each game's play-by-play page")
	return cmd
}

func newPlayByPlayCmd(opts *rootOptions) *cobra.Command {
	var pageURL, dir string

	cmd := &cobra.Command{
		Use:   "pbp",
		Short: "Extract one play-by-play page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := dirFromURL(pageURL, dir)
			if err != nil {
				return err
			}
			return opts.run(cmd, nil, nil, func(ctx context.Context, r *crawl.Runner) error {
				return r.PlayByPlay(ctx, pageURL, name)
			})
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "Play-by-play page URL (required)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output subdirectory (default: the page name)")
	cmd.MarkFlagRequired("url")
	return cmd
}

func newSeasonCmd(opts *rootOptions) *cobra.Command {
	var year, workers int

	cmd := &cobra.Command{
		Use:   "season",
		Short: "Extract every played match of a rugby league season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year < 1900 || year > 2100 {
				return fmt.Errorf("invalid season year: %d", year)
			}
			setWorkers := func(cfg *config.Config) {
				if cmd.Flags().Changed("workers") {
					cfg.Workers = workers
				}
			}
			return opts.run(cmd, setWorkers, nil, func(ctx context.Context, r *crawl.Runner) error {
				return r.Season(ctx, year)
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Season year (required)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Matches fetched concurrently")
	cmd.MarkFlagRequired("year")
	return cmd
}

func newMatchCmd(opts *rootOptions) *cobra.Command {
	var pageURL, dir string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Extract the stat blocks of one rugby league match page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := dirFromURL(pageURL, dir)
			if err != nil {
				return err
			}
			ref := nrl.MatchReference{URL: pageURL}
			return opts.run(cmd, nil, nil, func(ctx context.Context, r *crawl.Runner) error {
				return r.Match(ctx, ref, name)
			})
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "Match page URL (required)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output subdirectory (default: the page name)")
	cmd.MarkFlagRequired("url")
	return cmd
}

// run resolves the configuration, builds a runner, executes fn and prints the summary.
func (o *rootOptions) run(cmd *cobra.Command, adjust func(*config.Config), crawlOpts func(*crawl.Options), fn func(context.Context, *crawl.Runner) error) error {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}

	cfg, err := o.config(cmd.Flags())
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	metrics := logger.NewMetrics()

	store, err := storage.New(cfg.OutputDir, cfg.Dialect)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sc := scraper.New(scraper.Options{
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		UserAgent: cfg.UserAgent,
		Logger:    log,
		Metrics:   metrics,
	})

	options := crawl.Options{
		BrefBaseURL:    cfg.BrefBaseURL,
		SeasonURL:      cfg.SeasonURL,
		MatchBaseURL:   cfg.MatchBaseURL,
		Workers:        cfg.Workers,
		DebugArtifacts: cfg.DebugArtifacts,
	}
	if crawlOpts != nil {
		crawlOpts(&options)
	}
	runner := crawl.New(sc, store, log, metrics, options)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := fn(ctx, runner)

	summary := runner.Summary()
	log.Info("Run finished", logger.Fields{"units": summary.Units, "failed": summary.Failed})
	if err := WriteSummary(cmd.OutOrStdout(), summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return ErrUnitsFailed
	}
	return nil
}

// config loads env settings and applies the flags the user actually set.
func (o *rootOptions) config(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("retries") {
		cfg.Retries = o.retries
	}
	if flags.Changed("log-level") {
		level, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = level
	}
	if flags.Changed("dialect") {
		d, err := table.ParseDialect(o.dialect)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Dialect = d
	}
	if flags.Changed("debug-artifacts") {
		cfg.DebugArtifacts = o.debugArtifacts
	}
	return cfg, nil
}

// parseDateRange accepts either --date or both --from and --to.
func parseDateRange(date, from, to string) (time.Time, time.Time, error) {
	switch {
	case date != "" && (from != "" || to != ""):
		return time.Time{}, time.Time{}, fmt.Errorf("--date cannot be combined with --from/--to")
	case date != "":
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date: %w", err)
		}
		return d, d, nil
	case from == "" || to == "":
		return time.Time{}, time.Time{}, fmt.Errorf("either --date or both --from and --to are required")
	}

	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return start, end, nil
}

// dirFromURL returns dir, or the page's file name without its extension.
func dirFromURL(pageURL, dir string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid --url: %q", pageURL)
	}
	if dir != "" {
		return dir, nil
	}
	name := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive a directory from %q, pass --dir", pageURL)
	}
	return name, nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, ErrUnitsFailed):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitUnitsFailed)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
