package harvester

import (
	"fmt"
	"time"

	"waybackseller/internal/cdx"
	"waybackseller/internal/config"
	"waybackseller/internal/d1"
	"waybackseller/internal/logger"
	"waybackseller/internal/sink"
)

// NewSink builds the sink selected by cfg.Sink.Kind. day dates the CSV file.
func NewSink(cfg config.Config, day time.Time, log *logger.Logger) (sink.Sink, error) {
	switch cfg.Sink.Kind {
	case config.SinkCSV:
		return sink.NewCSVSink(cfg.Sink.CSV.Dir, cfg.Harvest.Domain, day), nil
	case config.SinkD1:
		client, err := d1.NewHTTPClient(d1.Options{
			BaseURL:    cfg.Sink.D1.BaseURL,
			APIToken:   cfg.Sink.D1.APIToken,
			AccountID:  cfg.Sink.D1.AccountID,
			DatabaseID: cfg.Sink.D1.DatabaseID,
			Timeout:    cfg.D1Timeout(),
		}, log)
		if err != nil {
			return nil, err
		}

		return sink.NewTableSink(sink.NewD1Store(client), log), nil
	case config.SinkSQL:
		store, err := sink.OpenSQLStore(sink.SQLOptions{
			URL:       cfg.Sink.SQL.URL,
			AuthToken: cfg.Sink.SQL.AuthToken,
			File:      cfg.Sink.SQL.File,
		})
		if err != nil {
			return nil, err
		}

		return sink.NewTableSink(store, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", sink.ErrUnknownKind, cfg.Sink.Kind)
	}
}

// NewFetcher builds the CDX fetcher from cfg.
func NewFetcher(cfg config.Config, log *logger.Logger) *cdx.Fetcher {
	return cdx.NewFetcher(cdx.FetcherOptions{
		Referer:   cfg.CDX.Referer,
		UserAgent: cfg.CDX.UserAgent,
		Timeout:   cfg.CDXTimeout(),
		ChunkSize: cfg.CDX.ChunkSize,
	}, log)
}

// FromConfig assembles a pipeline with the configured fetcher and sink.
func FromConfig(cfg config.Config, log *logger.Logger) (*Pipeline, error) {
	s, err := NewSink(cfg, time.Now(), log)
	if err != nil {
		return nil, err
	}

	return New(cfg, NewFetcher(cfg, log), s, log), nil
}

// Close releases the sink when it holds resources.
func (p *Pipeline) Close() error {
	if c, ok := p.sink.(interface{ Close() error }); ok {
		return c.Close()
	}

	return nil
}
