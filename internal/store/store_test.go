package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwulff/flowscribe/internal/errs"
)

// createTestDB creates a SQLite database file with the dictation history
// schema and returns its path.
func createTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flow.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE History (
			transcriptEntityId TEXT PRIMARY KEY,
			asrText TEXT,
			formattedText TEXT,
			editedText TEXT,
			timestamp TEXT,
			app TEXT,
			url TEXT,
			duration REAL,
			numWords INTEGER,
			status TEXT,
			language TEXT,
			conversationId TEXT,
			e2eLatency REAL,
			averageLogProb REAL,
			isArchived INTEGER DEFAULT 0,
			additionalContext TEXT
		);

		CREATE TABLE Dictionary (
			phrase TEXT NOT NULL,
			replacement TEXT,
			frequencyUsed INTEGER DEFAULT 0,
			frequencySeen INTEGER DEFAULT 0,
			lastUsed TEXT,
			lastSeen TEXT,
			manualEntry INTEGER DEFAULT 0,
			source TEXT,
			createdAt TEXT,
			modifiedAt TEXT,
			isDeleted INTEGER DEFAULT 0
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return path
}

type historyRow struct {
	id       string
	asr      string
	text     string
	ts       time.Time
	app      string
	status   string
	convID   string
	words    int
	duration float64
	archived bool
}

func insertRow(t *testing.T, path string, r historyRow) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if r.status == "" {
		r.status = "formatted"
	}
	_, err = db.Exec(`INSERT INTO History
		(transcriptEntityId, asrText, formattedText, timestamp, app, status,
		 conversationId, numWords, duration, isArchived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, r.asr, r.text, formatTimestamp(r.ts), r.app, r.status,
		r.convID, r.words, r.duration, r.archived)
	if err != nil {
		t.Fatalf("insert %s: %v", r.id, err)
	}
}

var baseTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestQueryNewestFirst(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "a", text: "oldest", ts: baseTime.Add(-2 * time.Hour), app: "com.example.a"})
	insertRow(t, path, historyRow{id: "b", text: "newest", ts: baseTime, app: "com.example.a"})
	insertRow(t, path, historyRow{id: "c", text: "middle", ts: baseTime.Add(-1 * time.Hour), app: "com.example.a"})

	entries, err := New(path).Query(Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range []string{"b", "c", "a"} {
		if entries[i].ID != want {
			t.Errorf("entries[%d].ID = %q, want %q", i, entries[i].ID, want)
		}
	}
}

func TestQueryLimitAndOffset(t *testing.T) {
	path := createTestDB(t)
	for i := 0; i < 5; i++ {
		insertRow(t, path, historyRow{
			id: string(rune('a' + i)),
			ts: baseTime.Add(-time.Duration(i) * time.Hour),
		})
	}

	entries, err := New(path).Query(Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("got %s, %s, want a, b", entries[0].ID, entries[1].ID)
	}

	entries, err = New(path).Query(Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query with offset: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "c" || entries[1].ID != "d" {
		t.Errorf("got %s, %s, want c, d", entries[0].ID, entries[1].ID)
	}
}

func TestQueryExcludesArchivedByDefault(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "live", ts: baseTime})
	insertRow(t, path, historyRow{id: "gone", ts: baseTime, archived: true})

	st := New(path)

	entries, err := st.Query(Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "live" {
		t.Fatalf("got %d entries, want only the live one", len(entries))
	}

	entries, err = st.Query(Filter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("Query with archived: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 with archived included", len(entries))
	}
}

func TestQueryFiltersCombine(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "match", ts: baseTime, app: "com.example.a", status: "formatted", words: 20})
	insertRow(t, path, historyRow{id: "wrong-app", ts: baseTime, app: "com.example.b", status: "formatted", words: 20})
	insertRow(t, path, historyRow{id: "wrong-status", ts: baseTime, app: "com.example.a", status: "empty", words: 20})
	insertRow(t, path, historyRow{id: "short", ts: baseTime, app: "com.example.a", status: "formatted", words: 3})
	insertRow(t, path, historyRow{id: "too-old", ts: baseTime.Add(-48 * time.Hour), app: "com.example.a", status: "formatted", words: 20})

	start := baseTime.Add(-24 * time.Hour)
	entries, err := New(path).Query(Filter{
		Start:    &start,
		App:      "com.example.a",
		Status:   "formatted",
		MinWords: 10,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "match" {
		t.Fatalf("got %d entries, want exactly the matching one", len(entries))
	}
}

func TestQueryDateRange(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "before", ts: baseTime.Add(-3 * time.Hour)})
	insertRow(t, path, historyRow{id: "inside", ts: baseTime.Add(-1 * time.Hour)})
	insertRow(t, path, historyRow{id: "after", ts: baseTime.Add(time.Hour)})

	start := baseTime.Add(-2 * time.Hour)
	end := baseTime
	entries, err := New(path).Query(Filter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "inside" {
		t.Fatalf("got %d entries, want only the in-range one", len(entries))
	}
}

func TestQuerySearch(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "a", text: "planning the roadmap meeting", ts: baseTime})
	insertRow(t, path, historyRow{id: "b", text: "lunch order", ts: baseTime.Add(-time.Hour)})
	insertRow(t, path, historyRow{id: "c", asr: "roadmap raw only", text: "cleaned up text", ts: baseTime.Add(-2 * time.Hour)})

	st := New(path)

	entries, err := st.Query(Filter{Search: "ROADMAP"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Fatalf("got %d entries, want only the display-text match", len(entries))
	}

	entries, err = st.Query(Filter{Search: "roadmap", SearchAllFields: true})
	if err != nil {
		t.Fatalf("Query all fields: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 when raw text is searched too", len(entries))
	}
}

func TestQueryValidatesBeforeOpening(t *testing.T) {
	st := New("/nonexistent/flow.sqlite")

	start := baseTime
	end := baseTime.Add(-time.Hour)
	_, err := st.Query(Filter{Start: &start, End: &end})
	if !errs.Is(err, errs.InvalidParameters) {
		t.Errorf("start after end: got %v, want InvalidParameters", err)
	}

	_, err = st.Query(Filter{Limit: MaxLimit + 1})
	if !errs.Is(err, errs.InvalidParameters) {
		t.Errorf("limit too large: got %v, want InvalidParameters", err)
	}

	_, err = st.Query(Filter{Offset: -1})
	if !errs.Is(err, errs.InvalidParameters) {
		t.Errorf("negative offset: got %v, want InvalidParameters", err)
	}
}

func TestQueryMissingDatabase(t *testing.T) {
	_, err := New("/nonexistent/flow.sqlite").Query(Filter{})
	if !errs.Is(err, errs.StorageUnavailable) {
		t.Errorf("got %v, want StorageUnavailable", err)
	}
}

func TestGetByIDExact(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "abc-123", text: "hello", ts: baseTime})
	insertRow(t, path, historyRow{id: "abc-456", text: "world", ts: baseTime})

	entry, err := New(path).GetByID("abc-123")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if entry.DisplayText() != "hello" {
		t.Errorf("DisplayText = %q, want %q", entry.DisplayText(), "hello")
	}
}

func TestGetByIDPrefix(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "abc-123", ts: baseTime})
	insertRow(t, path, historyRow{id: "xyz-789", ts: baseTime})

	entry, err := New(path).GetByID("abc")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if entry.ID != "abc-123" {
		t.Errorf("ID = %q, want %q", entry.ID, "abc-123")
	}
}

func TestGetByIDAmbiguous(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "abc-123", ts: baseTime})
	insertRow(t, path, historyRow{id: "abc-456", ts: baseTime})

	_, err := New(path).GetByID("abc")
	if !errs.Is(err, errs.AmbiguousID) {
		t.Errorf("got %v, want AmbiguousID", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "abc-123", ts: baseTime})

	_, err := New(path).GetByID("zzz")
	if !errs.Is(err, errs.NotFound) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestGetByIDEmpty(t *testing.T) {
	path := createTestDB(t)

	_, err := New(path).GetByID("  ")
	if !errs.Is(err, errs.InvalidParameters) {
		t.Errorf("got %v, want InvalidParameters", err)
	}
}

func TestConversation(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "a", convID: "conv-1", ts: baseTime})
	insertRow(t, path, historyRow{id: "b", convID: "conv-1", ts: baseTime.Add(time.Minute), archived: true})
	insertRow(t, path, historyRow{id: "c", convID: "conv-2", ts: baseTime})

	entries, err := New(path).Conversation("conv-1")
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 including the archived one", len(entries))
	}
}

func TestConversationNotFound(t *testing.T) {
	path := createTestDB(t)

	_, err := New(path).Conversation("conv-missing")
	if !errs.Is(err, errs.NotFound) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestAppAggregates(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "a", app: "com.tinyspeck.slackmacgap", ts: baseTime, words: 10, duration: 5})
	insertRow(t, path, historyRow{id: "b", app: "com.tinyspeck.slackmacgap", ts: baseTime.Add(time.Hour), words: 20, duration: 10})
	insertRow(t, path, historyRow{id: "c", app: "md.obsidian", ts: baseTime, words: 5, duration: 2})

	apps, err := New(path).AppAggregates()
	if err != nil {
		t.Fatalf("AppAggregates: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("got %d apps, want 2", len(apps))
	}
	if apps[0].ID != "com.tinyspeck.slackmacgap" {
		t.Errorf("apps[0].ID = %q, want the busier app first", apps[0].ID)
	}
	if apps[0].Name != "Slack" {
		t.Errorf("apps[0].Name = %q, want %q", apps[0].Name, "Slack")
	}
	if apps[0].Entries != 2 || apps[0].TotalWords != 30 || apps[0].TotalDuration != 15 {
		t.Errorf("apps[0] = %+v, want 2 entries, 30 words, 15s", apps[0])
	}
	if apps[0].LastUsed == nil || !apps[0].LastUsed.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("apps[0].LastUsed = %v, want %v", apps[0].LastUsed, baseTime.Add(time.Hour))
	}
}

func TestStats(t *testing.T) {
	path := createTestDB(t)
	insertRow(t, path, historyRow{id: "a", status: "formatted", ts: baseTime, words: 10, duration: 5})
	insertRow(t, path, historyRow{id: "b", status: "formatted", ts: baseTime.Add(-time.Hour), words: 20, duration: 15})
	insertRow(t, path, historyRow{id: "c", status: "empty", ts: baseTime.Add(time.Hour), archived: true})

	sum, err := New(path).Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if sum.TotalEntries != 3 || sum.ActiveEntries != 2 || sum.ArchivedEntries != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", sum.TotalEntries, sum.ActiveEntries, sum.ArchivedEntries)
	}
	if sum.TotalWords != 30 {
		t.Errorf("TotalWords = %d, want 30", sum.TotalWords)
	}
	if sum.StatusBreakdown["formatted"] != 2 || sum.StatusBreakdown["empty"] != 1 {
		t.Errorf("StatusBreakdown = %v", sum.StatusBreakdown)
	}
	if sum.FirstEntry == nil || !sum.FirstEntry.Equal(baseTime.Add(-time.Hour)) {
		t.Errorf("FirstEntry = %v, want %v", sum.FirstEntry, baseTime.Add(-time.Hour))
	}
	if sum.LastEntry == nil || !sum.LastEntry.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("LastEntry = %v, want %v", sum.LastEntry, baseTime.Add(time.Hour))
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	path := createTestDB(t)

	sum, err := New(path).Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if sum.TotalEntries != 0 {
		t.Errorf("TotalEntries = %d, want 0", sum.TotalEntries)
	}
	if sum.AvgDuration != nil || sum.AvgWords != nil || sum.QualityScore != nil {
		t.Error("averages over an empty database must be nil")
	}
}

func TestDictionary(t *testing.T) {
	path := createTestDB(t)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Exec(`INSERT INTO Dictionary (phrase, replacement, frequencyUsed, manualEntry, isDeleted)
		VALUES ('kubectl', '', 5, 1, 0)`)
	db.Exec(`INSERT INTO Dictionary (phrase, replacement, frequencyUsed, manualEntry, isDeleted)
		VALUES ('gh', 'GitHub', 12, 1, 0)`)
	db.Exec(`INSERT INTO Dictionary (phrase, frequencyUsed, isDeleted)
		VALUES ('dropped', 99, 1)`)
	db.Close()

	entries, err := New(path).Dictionary()
	if err != nil {
		t.Fatalf("Dictionary: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 with the deleted one excluded", len(entries))
	}
	if entries[0].Phrase != "gh" {
		t.Errorf("entries[0].Phrase = %q, want the most used first", entries[0].Phrase)
	}
	if entries[0].Replacement != "GitHub" || !entries[0].ManualEntry {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestMatchesSpans(t *testing.T) {
	spans := Matches("Roadmap review, then roadmap again", "roadmap")
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0][0] != 0 || spans[0][1] != 7 {
		t.Errorf("spans[0] = %v, want [0 7]", spans[0])
	}
	if spans[1][0] != 21 || spans[1][1] != 28 {
		t.Errorf("spans[1] = %v, want [21 28]", spans[1])
	}
}
