// Package cdx talks to the Wayback Machine CDX search API: it builds the
// query, streams the plain-text response and extracts capture records.
package cdx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"waybackseller/internal/timerange"
)

// DefaultEndpoint is the public CDX search endpoint.
const DefaultEndpoint = "http://web.archive.org/cdx/search/cdx"

// Collapse and match modes understood by the CDX server.
const (
	CollapseURLKey = "urlkey"
	CollapseDigest = "digest"
	MatchPrefix    = "prefix"
	MatchExact     = "exact"
	MatchHost      = "host"
	MatchDomain    = "domain"
)

// DefaultFields is the field list requested from the CDX server.
var DefaultFields = []string{"timestamp", "original"}

// Query errors.
var (
	ErrEmptyDomain     = errors.New("cdx query requires a domain")
	ErrInvalidEndpoint = errors.New("invalid cdx endpoint")
)

// Query describes one CDX search.
type Query struct {
	Range      *timerange.Range
	Endpoint   string
	Domain     string
	MatchType  string
	Collapse   string
	StatusCode string
	Fields     []string
}

// NewQuery returns a prefix query collapsed by urlkey against the default endpoint.
func NewQuery(domain string) Query {
	return Query{
		Endpoint:  DefaultEndpoint,
		Domain:    domain,
		MatchType: MatchPrefix,
		Collapse:  CollapseURLKey,
		Fields:    DefaultFields,
	}
}

// Build composes the search URL. The domain is passed through verbatim and
// only percent-encoded, since patterns such as "https://www.amazon.com/sp?seller="
// carry their own query separators.
func (q Query) Build() (string, error) {
	if strings.TrimSpace(q.Domain) == "" {
		return "", ErrEmptyDomain
	}

	endpoint := q.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	params := u.Query()
	params.Set("url", q.Domain)

	if q.MatchType != "" {
		params.Set("matchType", q.MatchType)
	}

	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params.Set("fl", strings.Join(fields, ","))

	if q.Collapse != "" {
		params.Set("collapse", q.Collapse)
	}

	if q.StatusCode != "" {
		params.Set("statuscode", q.StatusCode)
	}

	if q.Range != nil {
		params.Set("from", q.Range.From())
		params.Set("to", q.Range.To())
	}

	u.RawQuery = params.Encode()

	return u.String(), nil
}

// DomainName reduces a domain pattern to its host for file naming:
// "https://www.amazon.com/sp?seller=" becomes "www.amazon.com".
func DomainName(domain string) string {
	name := strings.TrimSpace(domain)
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")

	if i := strings.IndexAny(name, "/?#"); i >= 0 {
		name = name[:i]
	}

	return name
}
