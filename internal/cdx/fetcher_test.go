package cdx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waybackseller/internal/logger"
	"waybackseller/pkg/utils"
)

func collect(t *testing.T, f *Fetcher, target string) ([]string, *FetchStats, error) {
	t.Helper()

	var lines []string
	stats, err := f.Stream(context.Background(), target, func(line string) error {
		lines = append(lines, line)
		return nil
	})

	return lines, stats, err
}

func TestFetcher_StreamLines(t *testing.T) {
	var gotReferer, gotAgent, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("url")

		fmt.Fprint(w, "20230101000000 https://www.amazon.com/sp?seller=A1\n")
		fmt.Fprint(w, "20230102000000 https://www.amazon.com/sp?seller=B2\n")
		fmt.Fprint(w, "20230103000000 https://www.amazon.com/sp?seller=C3")
	}))
	defer srv.Close()

	q := NewQuery("https://www.amazon.com/sp")
	q.Endpoint = srv.URL + "/cdx/search/cdx"
	target, err := q.Build()
	require.NoError(t, err)

	// A chunk size smaller than a line exercises re-assembly.
	f := NewFetcher(FetcherOptions{ChunkSize: 7, Timeout: 5 * time.Second}, logger.Discard())

	lines, stats, err := collect(t, f, target)
	require.NoError(t, err)
	require.Equal(t, []string{
		"20230101000000 https://www.amazon.com/sp?seller=A1",
		"20230102000000 https://www.amazon.com/sp?seller=B2",
		"20230103000000 https://www.amazon.com/sp?seller=C3",
	}, lines)

	require.Equal(t, http.StatusOK, stats.StatusCode)
	require.Equal(t, 3, stats.Lines)
	require.Greater(t, stats.Chunks, 3)
	require.Equal(t, utils.DefaultReferer, gotReferer)
	require.Equal(t, utils.DefaultUserAgent, gotAgent)
	require.Equal(t, "https://www.amazon.com/sp", gotQuery)
}

func TestFetcher_Non200YieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "20230101000000 https://should.not/appear\n")
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{}, logger.Discard())

	lines, stats, err := collect(t, f, srv.URL)
	require.NoError(t, err)
	require.Empty(t, lines)
	require.Equal(t, http.StatusServiceUnavailable, stats.StatusCode)
}

func TestFetcher_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	f := NewFetcher(FetcherOptions{Timeout: 2 * time.Second}, logger.Discard())

	lines, _, err := collect(t, f, target)
	require.ErrorIs(t, err, ErrTransport)
	require.Empty(t, lines)
}

func TestFetcher_TruncatedBodyKeepsDeliveredLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := "20230101000000 https://a.example/1\n20230102000000 https://b.ex"
		// Promise more than is written so the client sees an unexpected EOF.
		w.Header().Set("Content-Length", fmt.Sprint(len(body)+100))
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{Timeout: 5 * time.Second}, logger.Discard())

	lines, _, err := collect(t, f, srv.URL)
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, []string{"20230101000000 https://a.example/1"}, lines)
}

func TestFetcher_CallbackErrorStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, strings.Repeat("20230101000000 https://a.example/\n", 5))
	}))
	defer srv.Close()

	errStop := errors.New("stop")
	f := NewFetcher(FetcherOptions{}, logger.Discard())

	calls := 0
	_, err := f.Stream(context.Background(), srv.URL, func(string) error {
		calls++
		if calls == 2 {
			return errStop
		}

		return nil
	})

	require.ErrorIs(t, err, errStop)
	require.Equal(t, 2, calls)
}
