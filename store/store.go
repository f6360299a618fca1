// Package store persists scrape outcomes to SQLite for the history API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gleanerhq/gleaner/models"
)

// ErrNotFound is returned when a scrape ID has no stored document.
var ErrNotFound = errors.New("scrape not found")

// Store is a SQLite-backed scrape history. Safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a Store for the given path. Use ":memory:" for an
// in-memory database.
func New(path string) *Store {
	return &Store{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (s *Store) Open() error {
	conn, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("connect to database: %w", err)
	}

	// Wait on lock contention instead of failing immediately.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("set busy timeout: %w", err)
	}

	// WAL allows concurrent reads during writes. Not supported in-memory.
	if s.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s.db = conn

	if err := s.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scrapes (
			scrape_id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			mode TEXT NOT NULL,
			success INTEGER NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_scrapes_url ON scrapes(url, created_at);
		CREATE INDEX IF NOT EXISTS idx_scrapes_created_at ON scrapes(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists one outcome and returns its scrape_id.
func (s *Store) Save(ctx context.Context, req *models.ScrapeRequest, resp *models.ScrapeResponse) (string, error) {
	id := uuid.NewString()

	content := ""
	if resp.Data != nil {
		content = resp.Data.Content
	}
	metadata, err := json.Marshal(resp.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrapes (scrape_id, url, mode, success, content, error, duration_ms, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.URL, resp.Metadata.ScrapeMode, boolToInt(resp.Success),
		content, resp.Error, resp.Metadata.DurationMs, string(metadata),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert scrape: %w", err)
	}
	return id, nil
}

// GetByID returns one stored scrape, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, scrapeID string) (*models.StoredScrape, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT scrape_id, url, mode, success, content, error, metadata, created_at
		FROM scrapes WHERE scrape_id = ?`, scrapeID)

	stored, err := scanScrape(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// QueryFilter narrows a history query. Zero values mean "no filter".
type QueryFilter struct {
	URL     string
	Mode    string
	Success *bool
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}

// Query returns matching scrapes, newest first, plus the total match count.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.StoredScrape, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scrapes"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scrapes: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT scrape_id, url, mode, success, content, error, metadata, created_at
		FROM scrapes` + where + `
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query scrapes: %w", err)
	}
	defer rows.Close()

	results := []models.StoredScrape{}
	for rows.Next() {
		stored, err := scanScrape(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *stored)
	}
	return results, total, rows.Err()
}

// Statistics aggregates stored scrapes by mode and success over a range.
func (s *Store) Statistics(ctx context.Context, from, to time.Time) ([]models.ScrapeStatistic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, success, COUNT(*), AVG(duration_ms)
		FROM scrapes
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY mode, success`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("aggregate scrapes: %w", err)
	}
	defer rows.Close()

	stats := []models.ScrapeStatistic{}
	for rows.Next() {
		var st models.ScrapeStatistic
		var success int
		if err := rows.Scan(&st.Mode, &success, &st.Count, &st.AvgDurationMs); err != nil {
			return nil, err
		}
		st.Success = success != 0
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScrape(row rowScanner) (*models.StoredScrape, error) {
	var stored models.StoredScrape
	var success int
	var metadata, createdAt string
	if err := row.Scan(&stored.ScrapeID, &stored.URL, &stored.Mode, &success,
		&stored.Content, &stored.Error, &metadata, &createdAt); err != nil {
		return nil, err
	}
	stored.Success = success != 0
	if err := json.Unmarshal([]byte(metadata), &stored.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		stored.CreatedAt = t
	}
	return &stored, nil
}

func buildWhere(filter QueryFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	if filter.URL != "" {
		clauses = append(clauses, "url = ?")
		args = append(args, filter.URL)
	}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode)
	}
	if filter.Success != nil {
		clauses = append(clauses, "success = ?")
		args = append(args, boolToInt(*filter.Success))
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.From.UTC().Format(time.RFC3339Nano))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.To.UTC().Format(time.RFC3339Nano))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
