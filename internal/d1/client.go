// Package d1 provides a client for the Cloudflare D1 HTTP query API.
package d1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"waybackseller/internal/logger"
)

// DefaultBaseURL is the Cloudflare v4 API root.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// API errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrAPIError             = errors.New("d1 api error")
	ErrNoResult             = errors.New("no result in response")
	ErrMissingCredentials   = errors.New("d1 api token, account id and database id are required")
)

// Client defines the interface for D1 communication.
type Client interface {
	Query(ctx context.Context, sql string, params ...any) (*QueryResponse, error)
	Database(ctx context.Context) (*DatabaseResponse, error)
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	APIToken   string
	AccountID  string
	DatabaseID string
	Timeout    time.Duration
}

// HTTPClient talks to the D1 REST endpoints with a bearer token.
type HTTPClient struct {
	rest       *resty.Client
	accountID  string
	databaseID string
	logger     *logger.Logger
}

// QueryRequest is the body of a query call.
type QueryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// APIMessage is an entry of the errors or messages arrays.
type APIMessage struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Envelope holds the fields every v4 response carries.
type Envelope struct {
	Errors   []APIMessage `json:"errors"`
	Messages []APIMessage `json:"messages"`
	Success  bool         `json:"success"`
}

// Err turns an unsuccessful envelope into an error.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}

	if len(e.Errors) == 0 {
		return ErrAPIError
	}

	msgs := make([]string, len(e.Errors))
	for i, m := range e.Errors {
		msgs[i] = fmt.Sprintf("%d: %s", m.Code, m.Message)
	}

	return fmt.Errorf("%w: %s", ErrAPIError, strings.Join(msgs, "; "))
}

// QueryMeta carries statement statistics.
type QueryMeta struct {
	Duration    float64 `json:"duration"`
	Changes     int     `json:"changes"`
	LastRowID   int64   `json:"last_row_id"`
	RowsRead    int     `json:"rows_read"`
	RowsWritten int     `json:"rows_written"`
}

// QueryResult is the outcome of one statement.
type QueryResult struct {
	Results []map[string]any `json:"results"`
	Meta    QueryMeta        `json:"meta"`
	Success bool             `json:"success"`
}

// QueryResponse is the body returned by a query call.
type QueryResponse struct {
	Result []QueryResult `json:"result"`
	Envelope
}

// FirstRow returns the first row of the first statement result.
func (r *QueryResponse) FirstRow() (map[string]any, error) {
	if r == nil || len(r.Result) == 0 || len(r.Result[0].Results) == 0 {
		return nil, ErrNoResult
	}

	return r.Result[0].Results[0], nil
}

// DatabaseInfo describes the database as returned by the metadata endpoint.
type DatabaseInfo struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	NumTables int    `json:"num_tables"`
	FileSize  int64  `json:"file_size"`
}

// DatabaseResponse is the body of the metadata endpoint.
type DatabaseResponse struct {
	Result DatabaseInfo `json:"result"`
	Envelope
}

// NewHTTPClient creates a D1 client.
func NewHTTPClient(opts Options, log *logger.Logger) (*HTTPClient, error) {
	if opts.APIToken == "" || opts.AccountID == "" || opts.DatabaseID == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(opts.APIToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &HTTPClient{
		rest:       rest,
		accountID:  opts.AccountID,
		databaseID: opts.DatabaseID,
		logger:     log.With("component", "d1"),
	}, nil
}

func (c *HTTPClient) databasePath() string {
	return fmt.Sprintf("/accounts/%s/d1/database/%s", c.accountID, c.databaseID)
}

// Query runs one parameterized statement.
func (c *HTTPClient) Query(ctx context.Context, sql string, params ...any) (*QueryResponse, error) {
	c.logger.Debug("executing d1 query", "sql", sql[:min(len(sql), 60)])

	var out QueryResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(QueryRequest{SQL: sql, Params: params}).
		SetResult(&out).
		SetError(&out).
		Post(c.databasePath() + "/query")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode(), resp.String())
	}

	if err := out.Err(); err != nil {
		return &out, err
	}

	return &out, nil
}

// Database fetches the database metadata. Used as a connectivity self-test.
func (c *HTTPClient) Database(ctx context.Context) (*DatabaseResponse, error) {
	var out DatabaseResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get(c.databasePath())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode(), resp.String())
	}

	if err := out.Err(); err != nil {
		return &out, err
	}

	return &out, nil
}
