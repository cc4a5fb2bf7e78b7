// Package recent keeps the list of recently saved boards in a SQLite
// database. Records are stored zstd-compressed; index 0 is the most recent
// save.
package recent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/phanxgames/corkboard"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DefaultLimit is the number of boards kept when no limit is configured.
const DefaultLimit = 10

// Entry is one row of the list.
type Entry struct {
	BoardID string
	corkboard.RecordSummary
}

// Store is a corkboard.RecentList backed by SQLite. It is safe for
// concurrent use.
type Store struct {
	db    *sql.DB
	limit int
	log   *zap.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder

	closed atomic.Bool
}

var _ corkboard.RecentList = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLimit sets how many boards are kept. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger. The default is corkboard.Logger().
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("recent: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, limit: DefaultLimit, log: corkboard.Logger(), enc: enc, dec: dec}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id TEXT NOT NULL,
			title TEXT NOT NULL,
			cards INTEGER NOT NULL,
			date TEXT NOT NULL,
			blob BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS boards_board_id ON boards(board_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database and codecs. It is safe to call twice.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Limit returns the number of boards kept.
func (s *Store) Limit() int { return s.limit }

// Len returns the number of boards in the list.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Push records rec as the most recent save. An older entry with the same
// board id is dropped, then the list is trimmed to the limit.
func (s *Store) Push(ctx context.Context, rec corkboard.Record) error {
	content, err := corkboard.MarshalRecord(rec)
	if err != nil {
		return err
	}
	blob := s.enc.EncodeAll(content, nil)
	sum := rec.Summary()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if rec.Data.ID != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE board_id = ?`, rec.Data.ID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO boards (board_id, title, cards, date, blob) VALUES (?, ?, ?, ?, ?)`,
		rec.Data.ID, sum.Title, sum.Cards, sum.Date, blob,
	); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM boards WHERE seq NOT IN (SELECT seq FROM boards ORDER BY seq DESC LIMIT ?)`,
		s.limit,
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	trimmed, _ := res.RowsAffected()
	s.log.Debug("recent board pushed",
		zap.String("title", sum.Title),
		zap.Int("bytes", len(content)),
		zap.Int("compressed", len(blob)),
		zap.Int64("trimmed", trimmed),
	)
	return nil
}

// Record decodes the entry at index.
func (s *Store) Record(ctx context.Context, index int) (corkboard.Record, error) {
	if index < 0 {
		return corkboard.Record{}, fmt.Errorf("recent %d: %w", index, corkboard.ErrIndexOutOfRange)
	}
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM boards ORDER BY seq DESC LIMIT 1 OFFSET ?`, index,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return corkboard.Record{}, fmt.Errorf("recent %d: %w", index, corkboard.ErrIndexOutOfRange)
	}
	if err != nil {
		return corkboard.Record{}, err
	}
	content, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return corkboard.Record{}, fmt.Errorf("recent %d: decompress: %w", index, err)
	}
	return corkboard.UnmarshalRecord(content)
}

// List returns every entry, most recent first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT board_id, title, cards, date FROM boards ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.BoardID, &e.Title, &e.Cards, &e.Date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
