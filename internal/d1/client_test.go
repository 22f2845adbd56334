package d1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"waybackseller/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(Options{
		BaseURL:    srv.URL + "/client/v4/",
		APIToken:   "token-123",
		AccountID:  "acct",
		DatabaseID: "db-1",
	}, logger.Discard())
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewHTTPClient_MissingCredentials(t *testing.T) {
	_, err := NewHTTPClient(Options{APIToken: "x", AccountID: "y"}, logger.Discard())
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestHTTPClient_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/client/v4/accounts/acct/d1/database/db-1/query", r.URL.Path)
		require.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "SELECT COUNT(*) AS count FROM t WHERE url = ?", req.SQL)
		require.Equal(t, []any{"A1B2C3"}, req.Params)

		writeJSON(w, http.StatusOK, `{"success":true,"errors":[],"messages":[],
			"result":[{"success":true,"results":[{"count":1}],"meta":{"rows_read":1}}]}`)
	})

	resp, err := client.Query(context.Background(), "SELECT COUNT(*) AS count FROM t WHERE url = ?", "A1B2C3")
	require.NoError(t, err)

	row, err := resp.FirstRow()
	require.NoError(t, err)
	require.InDelta(t, 1, row["count"], 0)
	require.Equal(t, 1, resp.Result[0].Meta.RowsRead)
}

func TestHTTPClient_QueryNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"errors":[{"code":7500,"message":"UNIQUE constraint failed"}]}`)
	})

	_, err := client.Query(context.Background(), "INSERT INTO t (url) VALUES (?)", "x")
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	require.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestHTTPClient_QueryUnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"errors":[{"code":1000,"message":"bad sql"}],"result":[]}`)
	})

	resp, err := client.Query(context.Background(), "SELEC 1")
	require.ErrorIs(t, err, ErrAPIError)
	require.Contains(t, err.Error(), "1000: bad sql")
	require.NotNil(t, resp)
}

func TestHTTPClient_Database(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/client/v4/accounts/acct/d1/database/db-1", r.URL.Path)

		writeJSON(w, http.StatusOK, `{"success":true,"result":{"uuid":"db-1","name":"wayback","num_tables":2}}`)
	})

	resp, err := client.Database(context.Background())
	require.NoError(t, err)
	require.Equal(t, "wayback", resp.Result.Name)
	require.Equal(t, 2, resp.Result.NumTables)
}

func TestHTTPClient_DatabaseUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"errors":[{"code":10000,"message":"Authentication error"}]}`)
	})

	_, err := client.Database(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
}

func TestQueryResponse_FirstRowEmpty(t *testing.T) {
	var resp *QueryResponse

	_, err := resp.FirstRow()
	require.ErrorIs(t, err, ErrNoResult)

	_, err = (&QueryResponse{Result: []QueryResult{{}}}).FirstRow()
	require.ErrorIs(t, err, ErrNoResult)
}
