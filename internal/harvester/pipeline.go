// Package harvester runs the fetch-extract-record pipeline once.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waybackseller/internal/cdx"
	"waybackseller/internal/config"
	"waybackseller/internal/logger"
	"waybackseller/internal/sink"
	"waybackseller/internal/timerange"
)

const progressEvery = 100

// Fetcher streams the lines of one CDX response.
type Fetcher interface {
	Stream(ctx context.Context, queryURL string, fn func(line string) error) (*cdx.FetchStats, error)
}

// Result summarizes one run.
type Result struct {
	FetchErr   error
	Fetch      *cdx.FetchStats
	Range      *timerange.Range
	QueryURL   string
	Lines      int
	Records    int
	Malformed  int
	Stored     int
	Duplicates int
	Failed     int
	Duration   time.Duration
}

// Pipeline wires a fetcher to a sink.
type Pipeline struct {
	fetcher Fetcher
	sink    sink.Sink
	calc    *timerange.Calculator
	logger  *logger.Logger
	cfg     config.Config
}

// New creates a pipeline. cfg is copied.
func New(cfg config.Config, fetcher Fetcher, s sink.Sink, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		sink:    s,
		calc:    timerange.NewCalculator(),
		logger:  log.With("component", "pipeline"),
		cfg:     cfg,
	}
}

// WithCalculator replaces the time-range calculator.
func (p *Pipeline) WithCalculator(calc *timerange.Calculator) *Pipeline {
	p.calc = calc
	return p
}

// Prepare runs the sink pre-flight. Its error is fatal for the run.
func (p *Pipeline) Prepare(ctx context.Context) error {
	prep, ok := p.sink.(sink.Preparer)
	if !ok {
		return nil
	}

	return prep.Prepare(ctx)
}

// Query resolves the configured time frame and builds the CDX search.
func (p *Pipeline) Query() (cdx.Query, error) {
	h := p.cfg.Harvest

	q := cdx.NewQuery(h.Domain)
	q.Endpoint = p.cfg.CDX.Endpoint
	q.StatusCode = h.StatusCode

	if h.MatchType != "" {
		q.MatchType = h.MatchType
	}

	if h.Collapse != "" {
		q.Collapse = h.Collapse
	}

	if h.AllTime {
		return q, nil
	}

	key, index, fellBack := p.cfg.TimeFrameKey()
	if fellBack {
		p.logger.Warn("invalid time frame, using default",
			"value", h.TimeFrame, "default_index", index, "window", key)
	}

	r, err := p.calc.Range(key)
	if err != nil {
		return cdx.Query{}, err
	}

	p.logger.Info("date range", "window", key, "from", r.Start.Format(time.RFC3339), "to", r.End.Format(time.RFC3339))
	q.Range = &r

	return q, nil
}

// Run fetches the index and hands every extracted record to the sink, one at
// a time and in response order. Per-record sink failures are logged and
// counted. A fetch failure ends the run early and is reported in
// Result.FetchErr; Run only returns an error when the query cannot be built.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	defer func() { res.Duration = time.Since(start) }()

	q, err := p.Query()
	if err != nil {
		return res, err
	}

	res.Range = q.Range

	res.QueryURL, err = q.Build()
	if err != nil {
		return res, fmt.Errorf("failed to build query: %w", err)
	}

	p.logger.Info("fetching captures", "domain", p.cfg.Harvest.Domain, "sink", p.cfg.Sink.Kind)

	stats, err := p.fetcher.Stream(ctx, res.QueryURL, func(line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		res.Lines++
		p.handleLine(ctx, line, res)

		return nil
	})
	res.Fetch = stats

	if err != nil {
		res.FetchErr = err
		p.logger.Error("fetch failed, stopping run", "error", err, "lines_processed", res.Lines)
	}

	p.logger.Info("processing complete",
		"lines", res.Lines,
		"records", res.Records,
		"stored", res.Stored,
		"duplicates", res.Duplicates,
		"failed", res.Failed,
		"malformed", res.Malformed,
	)

	return res, nil
}

func (p *Pipeline) handleLine(ctx context.Context, line string, res *Result) {
	rec, ok := cdx.ParseLine(line)
	if !ok {
		res.Malformed++
		return
	}

	res.Records++

	err := p.sink.Record(ctx, rec)

	switch {
	case err == nil:
		res.Stored++
		p.logger.Debug("stored record", "url", rec.URL, "date", rec.Timestamp)
	case errors.Is(err, sink.ErrDuplicate):
		res.Duplicates++
		p.logger.Info("url already exists, skipping", "url", rec.URL)
	default:
		res.Failed++
		p.logger.Error("failed to store record", "url", rec.URL, "error", err)
	}

	if res.Records%progressEvery == 0 {
		p.logger.Info("progress", "records", res.Records, "stored", res.Stored)
	}
}
