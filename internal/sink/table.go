package sink

import (
	"context"
	"fmt"
	"io"
	"time"

	"waybackseller/internal/logger"
	"waybackseller/internal/models"
	"waybackseller/pkg/utils"
)

// TableName is the table every table-backed store writes to.
const TableName = "wayback_sellerid_data"

// Statements shared by the table-backed stores.
const (
	CreateTableSQL = `CREATE TABLE IF NOT EXISTS wayback_sellerid_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	date TEXT NOT NULL,
	updateAt TEXT NOT NULL
)`
	CountByURLSQL = `SELECT COUNT(*) AS count FROM wayback_sellerid_data WHERE url = ?`
	InsertSQL     = `INSERT INTO wayback_sellerid_data (url, date, updateAt) VALUES (?, ?, ?)`
)

// Store is a table holding one row per distinct url.
type Store interface {
	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error
	// EnsureTable creates the table when missing.
	EnsureTable(ctx context.Context) error
	// Exists reports whether a row with this url is stored.
	Exists(ctx context.Context, url string) (bool, error)
	// Insert stores one row.
	Insert(ctx context.Context, row models.TableRow) error
}

// TableSink deduplicates records against a Store before inserting them.
// Check-then-insert is not atomic: two concurrent runs can both pass the
// check, and the second insert then fails on the UNIQUE constraint.
type TableSink struct {
	store  Store
	now    func() time.Time
	logger *logger.Logger
}

// NewTableSink wraps a store.
func NewTableSink(store Store, log *logger.Logger) *TableSink {
	return &TableSink{
		store:  store,
		now:    time.Now,
		logger: log.With("component", "table-sink"),
	}
}

// Prepare pings the database, then makes sure the table exists. A failed ping
// is fatal; a failed table creation is only logged.
func (s *TableSink) Prepare(ctx context.Context) error {
	s.logger.Info("testing database connection")

	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("connection self-test failed: %w", err)
	}

	s.logger.Info("database connection ok")

	if err := s.store.EnsureTable(ctx); err != nil {
		s.logger.Error("failed to create table", "table", TableName, "error", err)
		return nil
	}

	s.logger.Info("table created/verified", "table", TableName)

	return nil
}

// Record inserts rec unless its url is already stored, in which case it
// returns ErrDuplicate.
func (s *TableSink) Record(ctx context.Context, rec models.CaptureRecord) error {
	exists, err := s.store.Exists(ctx, rec.URL)
	if err != nil {
		return fmt.Errorf("existence check failed for %s: %w", short(rec.URL), err)
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, short(rec.URL))
	}

	if err := s.store.Insert(ctx, rec.Row(s.now())); err != nil {
		return fmt.Errorf("insert failed for %s: %w", short(rec.URL), err)
	}

	return nil
}

// Close closes the store when it holds resources.
func (s *TableSink) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

var strs = utils.NewStringHelper()

func short(url string) string {
	return strs.TruncateString(url, 120)
}
