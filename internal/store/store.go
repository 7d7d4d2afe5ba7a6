// Package store provides read-only access to the dictation history SQLite
// database. Every call opens the database fresh and releases it before
// returning, so results are always live and external writers are never
// blocked.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// Result limits enforced on every query.
const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

const entryColumns = `transcriptEntityId, asrText, formattedText, editedText,
	timestamp, app, url, duration, numWords, status, language,
	conversationId, e2eLatency, averageLogProb, isArchived, additionalContext`

// Filter is the normalized set of constraints applied to a query. All
// provided fields combine with logical AND.
type Filter struct {
	Start           *time.Time
	End             *time.Time
	App             string // bundle identifier
	Status          string
	ConversationID  string
	MinWords        int
	Search          string // case-insensitive text match, applied after fetch
	SearchAllFields bool   // match raw ASR/formatted/edited fields too
	Limit           int    // 0 means DefaultLimit
	Offset          int
	IncludeArchived bool
}

func (f Filter) validate() (Filter, error) {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 0 || f.Limit > MaxLimit {
		return f, errs.Newf(errs.InvalidParameters, "limit must be between 1 and %d, got %d", MaxLimit, f.Limit)
	}
	if f.Offset < 0 {
		return f, errs.Newf(errs.InvalidParameters, "offset must not be negative, got %d", f.Offset)
	}
	if f.MinWords < 0 {
		return f, errs.Newf(errs.InvalidParameters, "min words must not be negative, got %d", f.MinWords)
	}
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return f, errs.New(errs.InvalidParameters, "start date is after end date")
	}
	return f, nil
}

// Store locates the database. It holds no connection state; handles live only
// for the duration of a single call.
type Store struct {
	path string
}

// New returns a store reading from the database at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the resolved database path.
func (s *Store) Path() string { return s.path }

// open opens the database read-only and verifies the connection.
func (s *Store) open() (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, fmt.Sprintf("database not found at %s", s.path), err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.StorageUnavailable, "open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.StorageUnavailable, "ping database", err)
	}
	return db, nil
}

// Query returns entries matching the filter, newest first, at most
// Filter.Limit of them. The filter is validated before the database is
// touched.
func (s *Store) Query(f Filter) ([]transcript.Entry, error) {
	f, err := f.validate()
	if err != nil {
		return nil, err
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := "SELECT " + entryColumns + " FROM History WHERE 1=1"
	var params []any

	if !f.IncludeArchived {
		query += " AND (isArchived = 0 OR isArchived IS NULL)"
	}
	if f.Start != nil {
		query += " AND timestamp >= ? AND timestamp IS NOT NULL"
		params = append(params, formatTimestamp(*f.Start))
	}
	if f.End != nil {
		query += " AND timestamp <= ? AND timestamp IS NOT NULL"
		params = append(params, formatTimestamp(*f.End))
	}
	if f.App != "" {
		query += " AND app = ?"
		params = append(params, f.App)
	}
	if f.Status != "" {
		query += " AND status = ?"
		params = append(params, f.Status)
	}
	if f.ConversationID != "" {
		query += " AND conversationId = ?"
		params = append(params, f.ConversationID)
	}
	if f.MinWords > 0 {
		query += " AND numWords >= ?"
		params = append(params, f.MinWords)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	params = append(params, f.Limit)
	if f.Offset > 0 {
		query += " OFFSET ?"
		params = append(params, f.Offset)
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "query history", err)
	}
	defer rows.Close()

	var entries []transcript.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if f.Search != "" && !MatchesEntry(entry, f.Search, f.SearchAllFields) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "iterate history rows", err)
	}
	return entries, nil
}

// GetByID returns the entry whose identifier matches id exactly or starts
// with id. Zero matches fail with NotFound, more than one with AmbiguousID.
func (s *Store) GetByID(id string) (transcript.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return transcript.Entry{}, errs.New(errs.InvalidParameters, "transcript id must not be empty")
	}

	db, err := s.open()
	if err != nil {
		return transcript.Entry{}, err
	}
	defer db.Close()

	row := db.QueryRow("SELECT "+entryColumns+" FROM History WHERE transcriptEntityId = ?", id)
	entry, err := scanEntry(row)
	if err == nil {
		return entry, nil
	}
	if errs.KindOf(err) == errs.StorageCorrupt {
		return transcript.Entry{}, err
	}

	// Exact miss: treat id as a prefix.
	pattern := escapeLike(id) + "%"
	rows, err := db.Query(
		"SELECT "+entryColumns+` FROM History WHERE transcriptEntityId LIKE ? ESCAPE '\' ORDER BY timestamp DESC LIMIT 11`,
		pattern)
	if err != nil {
		return transcript.Entry{}, errs.Wrap(errs.StorageCorrupt, "query history by prefix", err)
	}
	defer rows.Close()

	var matches []transcript.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return transcript.Entry{}, err
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return transcript.Entry{}, errs.Wrap(errs.StorageCorrupt, "iterate history rows", err)
	}

	switch len(matches) {
	case 0:
		return transcript.Entry{}, errs.Newf(errs.NotFound, "transcript not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, shortID(m.ID))
		}
		return transcript.Entry{}, errs.Newf(errs.AmbiguousID,
			"multiple transcripts match %q: %s", id, strings.Join(ids, ", "))
	}
}

// Conversation returns all entries sharing a conversation identifier, or
// NotFound when none do.
func (s *Store) Conversation(id string) ([]transcript.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.New(errs.InvalidParameters, "conversation id must not be empty")
	}
	entries, err := s.Query(Filter{ConversationID: id, Limit: MaxLimit, IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errs.Newf(errs.NotFound, "conversation not found: %s", id)
	}
	return entries, nil
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "..."
	}
	return id
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
