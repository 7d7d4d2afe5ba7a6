package store

import (
	"database/sql"
	"time"

	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/stats"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// AppAggregates computes per-app usage totals across the whole database in
// SQL, ordered by entry count descending.
func (s *Store) AppAggregates() ([]stats.AppStat, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT app, COUNT(*), SUM(duration), SUM(numWords), AVG(e2eLatency), MAX(timestamp)
		FROM History
		WHERE app IS NOT NULL AND app != ''
		GROUP BY app
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "query app aggregates", err)
	}
	defer rows.Close()

	var apps []stats.AppStat
	for rows.Next() {
		var (
			a        stats.AppStat
			duration sql.NullFloat64
			words    sql.NullInt64
			latency  sql.NullFloat64
			lastUsed sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Entries, &duration, &words, &latency, &lastUsed); err != nil {
			return nil, errs.Wrap(errs.StorageCorrupt, "scan app aggregate", err)
		}
		a.Name = transcript.AppDisplayName(a.ID)
		a.TotalDuration = duration.Float64
		a.TotalWords = int(words.Int64)
		if latency.Valid {
			v := latency.Float64
			a.AvgLatency = &v
		}
		if lastUsed.Valid {
			if t, ok := parseTimestamp(lastUsed.String); ok {
				a.LastUsed = &t
			}
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "iterate app aggregates", err)
	}
	return apps, nil
}

// Stats computes whole-database statistics in SQL, without the row ceiling
// that entry queries carry.
func (s *Store) Stats() (stats.Summary, error) {
	db, err := s.open()
	if err != nil {
		return stats.Summary{}, err
	}
	defer db.Close()

	sum := stats.Summary{StatusBreakdown: map[string]int{}}

	row := db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(CASE WHEN isArchived = 0 OR isArchived IS NULL THEN 1 END),
		       COALESCE(SUM(duration), 0),
		       COALESCE(SUM(numWords), 0),
		       AVG(duration),
		       AVG(numWords),
		       AVG(averageLogProb)
		FROM History
	`)
	var avgDuration, avgWords, quality sql.NullFloat64
	if err := row.Scan(&sum.TotalEntries, &sum.ActiveEntries, &sum.TotalDuration,
		&sum.TotalWords, &avgDuration, &avgWords, &quality); err != nil {
		return stats.Summary{}, errs.Wrap(errs.StorageCorrupt, "scan database totals", err)
	}
	sum.ArchivedEntries = sum.TotalEntries - sum.ActiveEntries
	if avgDuration.Valid {
		sum.AvgDuration = &avgDuration.Float64
	}
	if avgWords.Valid {
		sum.AvgWords = &avgWords.Float64
	}
	if quality.Valid {
		sum.QualityScore = &quality.Float64
	}

	rows, err := db.Query("SELECT status, COUNT(*) FROM History GROUP BY status")
	if err != nil {
		return stats.Summary{}, errs.Wrap(errs.StorageCorrupt, "query status breakdown", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status sql.NullString
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats.Summary{}, errs.Wrap(errs.StorageCorrupt, "scan status breakdown", err)
		}
		key := status.String
		if key == "" {
			key = "unknown"
		}
		sum.StatusBreakdown[key] = count
	}
	if err := rows.Err(); err != nil {
		return stats.Summary{}, errs.Wrap(errs.StorageCorrupt, "iterate status breakdown", err)
	}

	var first, last sql.NullString
	row = db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM History WHERE timestamp IS NOT NULL")
	if err := row.Scan(&first, &last); err != nil {
		return stats.Summary{}, errs.Wrap(errs.StorageCorrupt, "scan date range", err)
	}
	if first.Valid {
		if t, ok := parseTimestamp(first.String); ok {
			sum.FirstEntry = &t
		}
	}
	if last.Valid {
		if t, ok := parseTimestamp(last.String); ok {
			sum.LastEntry = &t
		}
	}

	return sum, nil
}

// DictionaryEntry is one custom vocabulary replacement.
type DictionaryEntry struct {
	Phrase        string     `json:"phrase"`
	Replacement   string     `json:"replacement,omitempty"`
	FrequencyUsed int        `json:"frequency_used"`
	FrequencySeen int        `json:"frequency_seen"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
	ManualEntry   bool       `json:"manual_entry"`
	Source        string     `json:"source,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	ModifiedAt    *time.Time `json:"modified_at,omitempty"`
}

// Dictionary returns non-deleted custom dictionary entries ordered by usage
// frequency then recency.
func (s *Store) Dictionary() ([]DictionaryEntry, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT phrase, replacement, frequencyUsed, frequencySeen,
		       lastUsed, lastSeen, manualEntry, source, createdAt, modifiedAt
		FROM Dictionary
		WHERE isDeleted = 0 OR isDeleted IS NULL
		ORDER BY frequencyUsed DESC, lastUsed DESC
	`)
	if err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "query dictionary", err)
	}
	defer rows.Close()

	var entries []DictionaryEntry
	for rows.Next() {
		var (
			d                                    DictionaryEntry
			replacement, source                  sql.NullString
			used, seen                           sql.NullInt64
			lastUsed, lastSeen, created, changed sql.NullString
			manual                               sql.NullBool
		)
		if err := rows.Scan(&d.Phrase, &replacement, &used, &seen,
			&lastUsed, &lastSeen, &manual, &source, &created, &changed); err != nil {
			return nil, errs.Wrap(errs.StorageCorrupt, "scan dictionary row", err)
		}
		d.Replacement = replacement.String
		d.Source = source.String
		d.FrequencyUsed = int(used.Int64)
		d.FrequencySeen = int(seen.Int64)
		d.ManualEntry = manual.Valid && manual.Bool
		d.LastUsed = nullTime(lastUsed)
		d.LastSeen = nullTime(lastSeen)
		d.CreatedAt = nullTime(created)
		d.ModifiedAt = nullTime(changed)
		entries = append(entries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.StorageCorrupt, "iterate dictionary rows", err)
	}
	return entries, nil
}

func nullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	if t, ok := parseTimestamp(s.String); ok {
		return &t
	}
	return nil
}
