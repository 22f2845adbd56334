package cdx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"waybackseller/internal/logger"
	"waybackseller/pkg/utils"
)

// ErrTransport wraps network failures while requesting or draining the CDX response.
var ErrTransport = errors.New("cdx transport error")

// Fetcher defaults.
const (
	DefaultTimeout   = 300 * time.Second
	DefaultChunkSize = 10240
)

// FetcherOptions configures a Fetcher. Zero values select the defaults.
type FetcherOptions struct {
	Referer   string
	UserAgent string
	Timeout   time.Duration
	ChunkSize int
}

// FetchStats describes one fetch.
type FetchStats struct {
	StatusCode int
	Bytes      int64
	Chunks     int
	Lines      int
	Latin1     int
	Duration   time.Duration
}

// Fetcher performs the single CDX request and streams its body line by line.
type Fetcher struct {
	client    *resty.Client
	headers   map[string]string
	chunkSize int
	logger    *logger.Logger
}

// NewFetcher creates a fetcher with its own resty client.
func NewFetcher(opts FetcherOptions, log *logger.Logger) *Fetcher {
	return NewFetcherWithClient(resty.New(), opts, log)
}

// NewFetcherWithClient creates a fetcher around an existing resty client.
func NewFetcherWithClient(client *resty.Client, opts FetcherOptions, log *logger.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	client.SetTimeout(timeout)

	return &Fetcher{
		client:    client,
		headers:   utils.NewHTTPHelperWithIdentity(opts.Referer, opts.UserAgent).HeaderMap(nil),
		chunkSize: chunkSize,
		logger:    log.With("component", "cdx"),
	}
}

// Stream issues one GET against queryURL and calls fn for every line of the
// body, in order. A non-200 status is logged and yields no lines and no error.
// Transport failures return an error wrapping ErrTransport; lines delivered
// before the failure stay delivered. An error from fn stops the stream and is
// returned as is.
func (f *Fetcher) Stream(ctx context.Context, queryURL string, fn func(line string) error) (*FetchStats, error) {
	start := time.Now()
	stats := &FetchStats{}

	defer func() { stats.Duration = time.Since(start) }()

	f.logger.Debug("requesting cdx index", "url", queryURL)

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(f.headers).
		SetDoNotParseResponse(true).
		Get(queryURL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			_ = resp.RawBody().Close()
		}

		return stats, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	body := resp.RawBody()
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			f.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	stats.StatusCode = resp.StatusCode()
	if stats.StatusCode != http.StatusOK {
		f.logger.Warn("cdx server returned non-200 status", "status", stats.StatusCode)

		return stats, nil
	}

	splitter := &lineSplitter{}
	buf := make([]byte, f.chunkSize)

	emit := func(lines []string) error {
		for _, line := range lines {
			stats.Lines++

			if err := fn(line); err != nil {
				return err
			}
		}

		return nil
	}

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			stats.Chunks++
			stats.Bytes += int64(n)

			if err := emit(splitter.feed(buf[:n])); err != nil {
				stats.Latin1 = splitter.latin1
				return stats, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			stats.Latin1 = splitter.latin1
			return stats, fmt.Errorf("%w: reading body after %d bytes: %w", ErrTransport, stats.Bytes, readErr)
		}
	}

	if line, ok := splitter.flush(); ok {
		if err := emit([]string{line}); err != nil {
			stats.Latin1 = splitter.latin1
			return stats, err
		}
	}

	stats.Latin1 = splitter.latin1
	if stats.Latin1 > 0 {
		f.logger.Warn("decoded lines as ISO-8859-1", "lines", stats.Latin1)
	}

	return stats, nil
}
