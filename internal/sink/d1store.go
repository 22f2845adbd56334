package sink

import (
	"context"
	"fmt"

	"waybackseller/internal/d1"
	"waybackseller/internal/models"
)

// D1Store keeps the table in Cloudflare D1. Each call is one HTTP request.
type D1Store struct {
	client d1.Client
}

// Ensure D1Store implements Store.
var _ Store = (*D1Store)(nil)

// NewD1Store wraps a D1 client.
func NewD1Store(client d1.Client) *D1Store {
	return &D1Store{client: client}
}

// Ping queries the database metadata endpoint.
func (s *D1Store) Ping(ctx context.Context) error {
	_, err := s.client.Database(ctx)
	return err
}

// EnsureTable creates the table when missing.
func (s *D1Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.Query(ctx, CreateTableSQL)
	return err
}

// Exists runs the parameterized count query.
func (s *D1Store) Exists(ctx context.Context, url string) (bool, error) {
	resp, err := s.client.Query(ctx, CountByURLSQL, url)
	if err != nil {
		return false, err
	}

	row, err := resp.FirstRow()
	if err != nil {
		return false, err
	}

	count, err := toInt(row["count"])
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Insert runs the parameterized insert.
func (s *D1Store) Insert(ctx context.Context, row models.TableRow) error {
	_, err := s.client.Query(ctx, InsertSQL, row.URL, row.Date, row.UpdateAt)
	return err
}

// toInt accepts the numeric shapes a JSON decoder produces.
func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected count value %v (%T)", v, v)
	}
}
