package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type Revision struct {
	ID        string
	Content   string
	Size      int
	CreatedAt time.Time
}

// SQLiteStore keeps every written document as a new revision. Read returns
// the newest one.
type SQLiteStore struct {
	db   *sql.DB
	lang model.Language
	now  func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

func NewSQLiteStore(db *sql.DB, lang model.Language) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{
		db:      db,
		lang:    lang,
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// OpenSQLite opens the database file and brings the schema up to date.
func OpenSQLite(path string, lang model.Language) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(db, lang)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Read(ctx context.Context) (string, error) {
	rev, err := s.Latest(ctx)
	if errors.Is(err, ErrNotFound) {
		return DefaultTemplate(s.lang), nil
	}
	if err != nil {
		return "", err
	}
	return rev.Content, nil
}

func (s *SQLiteStore) Write(ctx context.Context, text string) error {
	_, err := s.Append(ctx, text)
	return err
}

// Append stores text as a new revision and returns it.
func (s *SQLiteStore) Append(ctx context.Context, text string) (Revision, error) {
	at := s.now()
	id, err := s.newID(at)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{ID: id, Content: text, Size: len(text), CreatedAt: at}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO revisions (id, content, size, created_at)
		VALUES (?, ?, ?, ?)`,
		rev.ID, rev.Content, rev.Size, mustTime(rev.CreatedAt),
	)
	if err != nil {
		return Revision{}, fmt.Errorf("storage: insert revision: %w", err)
	}
	return rev, nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, size, created_at
		FROM revisions ORDER BY id DESC LIMIT 1`)
	rev, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	return rev, err
}

func (s *SQLiteStore) Revision(ctx context.Context, id string) (Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, size, created_at
		FROM revisions WHERE id = ?`, id)
	rev, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	return rev, err
}

// Revisions lists the newest revisions first.
func (s *SQLiteStore) Revisions(ctx context.Context, limit, offset int) ([]Revision, error) {
	query := `SELECT id, content, size, created_at FROM revisions ORDER BY id DESC`
	args := make([]any, 0, 2)
	query += applyPagination(&args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Revision, 0)
	for rows.Next() {
		rev, scanErr := scanRevision(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Restore copies an older revision forward as the newest one.
func (s *SQLiteStore) Restore(ctx context.Context, id string) (Revision, error) {
	old, err := s.Revision(ctx, id)
	if err != nil {
		return Revision{}, err
	}
	return s.Append(ctx, old.Content)
}

func (s *SQLiteStore) DeleteRevision(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM revisions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Prune keeps the newest keep revisions and reports how many were removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM revisions
		WHERE id NOT IN (SELECT id FROM revisions ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) newID(at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), s.entropy)
	if err != nil {
		return "", fmt.Errorf("storage: revision id: %w", err)
	}
	return id.String(), nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(s scanner) (Revision, error) {
	var out Revision
	var created string
	if err := s.Scan(&out.ID, &out.Content, &out.Size, &created); err != nil {
		return Revision{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Revision{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
