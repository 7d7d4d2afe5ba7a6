package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// timestampFormat is the canonical text form timestamps are written in, used
// for range-filter parameters so string comparison in SQL stays correct.
const timestampFormat = "2006-01-02 15:04:05.000 +00:00"

// Layouts seen in history timestamps, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999 -07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type scanner interface {
	Scan(dest ...any) error
}

// scanEntry decodes one history row. A row that cannot be decoded fails with
// StorageCorrupt; a missing row fails with NotFound.
func scanEntry(row scanner) (transcript.Entry, error) {
	var (
		e          transcript.Entry
		asr        sql.NullString
		formatted  sql.NullString
		edited     sql.NullString
		timestamp  sql.NullString
		app        sql.NullString
		url        sql.NullString
		duration   sql.NullFloat64
		numWords   sql.NullInt64
		status     sql.NullString
		language   sql.NullString
		convID     sql.NullString
		latency    sql.NullFloat64
		confidence sql.NullFloat64
		archived   sql.NullBool
		context    sql.NullString
	)

	err := row.Scan(&e.ID, &asr, &formatted, &edited, &timestamp, &app, &url,
		&duration, &numWords, &status, &language, &convID, &latency,
		&confidence, &archived, &context)
	if errors.Is(err, sql.ErrNoRows) {
		return transcript.Entry{}, errs.New(errs.NotFound, "transcript not found")
	}
	if err != nil {
		return transcript.Entry{}, errs.Wrap(errs.StorageCorrupt, "scan history row", err)
	}

	e.ASRText = asr.String
	e.FormattedText = formatted.String
	e.EditedText = edited.String
	e.App = app.String
	e.URL = url.String
	e.Status = status.String
	e.Language = language.String
	e.ConversationID = convID.String
	e.AdditionalContext = context.String
	e.IsArchived = archived.Valid && archived.Bool

	if timestamp.Valid && timestamp.String != "" {
		t, ok := parseTimestamp(timestamp.String)
		if !ok {
			return transcript.Entry{}, errs.Newf(errs.StorageCorrupt, "unparseable timestamp %q", timestamp.String)
		}
		e.Timestamp = t
	}
	if duration.Valid {
		v := duration.Float64
		e.Duration = &v
	}
	if numWords.Valid {
		v := int(numWords.Int64)
		e.NumWords = &v
	}
	if latency.Valid {
		v := latency.Float64
		e.E2ELatency = &v
	}
	if confidence.Valid {
		v := confidence.Float64
		e.Confidence = &v
	}
	return e, nil
}
