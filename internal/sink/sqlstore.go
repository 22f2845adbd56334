package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // registers "libsql"
	_ "modernc.org/sqlite"                                // registers "sqlite"

	"waybackseller/internal/models"
)

// ErrNoDatabase is returned when neither a URL nor a file is configured.
var ErrNoDatabase = errors.New("sql store requires a database url or file")

// SQLOptions selects the database. URL wins over File.
type SQLOptions struct {
	URL       string
	AuthToken string
	File      string
}

// SQLStore keeps the table in a database/sql database: a local SQLite file
// or a remote libSQL server.
type SQLStore struct {
	db *sql.DB
}

// Ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)

// OpenSQLStore opens the configured database.
func OpenSQLStore(opts SQLOptions) (*SQLStore, error) {
	driver, dsn, err := sqlDSN(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an already open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func sqlDSN(opts SQLOptions) (string, string, error) {
	if opts.URL != "" {
		if opts.AuthToken == "" {
			return "libsql", opts.URL, nil
		}

		u, err := url.Parse(opts.URL)
		if err != nil {
			return "", "", fmt.Errorf("invalid database url: %w", err)
		}

		q := u.Query()
		q.Set("authToken", opts.AuthToken)
		u.RawQuery = q.Encode()

		return "libsql", u.String(), nil
	}

	if opts.File != "" {
		return "sqlite", "file:" + strings.TrimPrefix(opts.File, "file:"), nil
	}

	return "", "", ErrNoDatabase
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureTable creates the table when missing.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, CreateTableSQL)
	return err
}

// Exists runs the parameterized count query.
func (s *SQLStore) Exists(ctx context.Context, url string) (bool, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, CountByURLSQL, url).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

// Insert runs the parameterized insert.
func (s *SQLStore) Insert(ctx context.Context, row models.TableRow) error {
	_, err := s.db.ExecContext(ctx, InsertSQL, row.URL, row.Date, row.UpdateAt)
	return err
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
