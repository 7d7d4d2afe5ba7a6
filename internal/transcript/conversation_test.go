package transcript

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

var convBase = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func entryAt(id, convID, app, text string, offset time.Duration) Entry {
	return Entry{
		ID:             id,
		ConversationID: convID,
		App:            app,
		FormattedText:  text,
		Timestamp:      convBase.Add(offset),
		Status:         StatusFormatted,
	}
}

func TestNewConversationSortsAscending(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("b", "c1", "", "second", time.Minute),
		entryAt("a", "c1", "", "first", 0),
		entryAt("c", "c1", "", "third", 2*time.Minute),
	})

	if len(conv.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(conv.Entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if conv.Entries[i].ID != want {
			t.Errorf("Entries[%d].ID = %q, want %q", i, conv.Entries[i].ID, want)
		}
	}
	if !conv.StartTime().Equal(convBase) {
		t.Errorf("StartTime = %v, want %v", conv.StartTime(), convBase)
	}
	if !conv.EndTime().Equal(convBase.Add(2 * time.Minute)) {
		t.Errorf("EndTime = %v, want %v", conv.EndTime(), convBase.Add(2*time.Minute))
	}
}

func TestNewConversationDominantApp(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("a", "c1", "com.tinyspeck.slackmacgap", "x", 0),
		entryAt("b", "c1", "md.obsidian", "x", time.Minute),
		entryAt("c", "c1", "com.tinyspeck.slackmacgap", "x", 2*time.Minute),
	})
	if conv.App != "com.tinyspeck.slackmacgap" {
		t.Errorf("App = %q, want the majority app", conv.App)
	}
	if conv.AppName() != "Slack" {
		t.Errorf("AppName = %q, want Slack", conv.AppName())
	}
}

func TestNewConversationAppTieGoesToFirstSeen(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("a", "c1", "md.obsidian", "x", 0),
		entryAt("b", "c1", "com.tinyspeck.slackmacgap", "x", time.Minute),
	})
	if conv.App != "md.obsidian" {
		t.Errorf("App = %q, want first-seen app on a tie", conv.App)
	}
}

func TestGroupConversationsOrdering(t *testing.T) {
	entries := []Entry{
		entryAt("a1", "old", "", "x", 0),
		entryAt("b1", "recent", "", "x", 2*time.Hour),
		entryAt("a2", "old", "", "x", time.Minute),
		entryAt("solo", "", "", "x", time.Hour),
	}

	convs := GroupConversations(entries, false)
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2 without singletons", len(convs))
	}
	if convs[0].ID != "recent" || convs[1].ID != "old" {
		t.Errorf("order = %s, %s; want most recently active first", convs[0].ID, convs[1].ID)
	}
	if convs[1].EntryCount() != 2 {
		t.Errorf("old conversation has %d entries, want 2", convs[1].EntryCount())
	}
}

func TestGroupConversationsSingletons(t *testing.T) {
	entries := []Entry{
		entryAt("a1", "c1", "", "x", 0),
		entryAt("solo", "", "", "x", time.Hour),
	}

	convs := GroupConversations(entries, true)
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2 with singletons", len(convs))
	}
	if convs[0].ID != "single_solo" {
		t.Errorf("convs[0].ID = %q, want synthetic singleton id", convs[0].ID)
	}
}

func TestGroupConversationsIdempotent(t *testing.T) {
	entries := []Entry{
		entryAt("a1", "c1", "", "x", 0),
		entryAt("a2", "c1", "", "x", time.Minute),
	}
	first := GroupConversations(entries, false)
	second := GroupConversations(entries, false)
	if len(first) != len(second) {
		t.Fatalf("grouping changed size between runs: %d vs %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID || first[0].EntryCount() != second[0].EntryCount() {
		t.Error("grouping the same input twice must yield the same conversations")
	}
}

func TestSummaryShort(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("a", "c1", "", "hello there", 0),
		entryAt("b", "c1", "", "general kenobi", time.Minute),
	})
	if got := conv.Summary(); got != "hello there general kenobi" {
		t.Errorf("Summary = %q", got)
	}
}

func TestSummaryTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 40) // 200 chars
	conv := NewConversation("c1", []Entry{entryAt("a", "c1", "", long, 0)})

	got := conv.Summary()
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Summary = %q, want ellipsis suffix", got)
	}
	if len(got) > summaryMaxLen+3 {
		t.Errorf("Summary length = %d, want at most %d", len(got), summaryMaxLen+3)
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "..."), " ") {
		t.Errorf("Summary = %q, must not end mid-space", got)
	}
}

func TestSummaryTruncatesMultibyteOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("語", 120) // 3 bytes per rune, no spaces
	conv := NewConversation("c1", []Entry{entryAt("a", "c1", "", long, 0)})

	got := conv.Summary()
	if !utf8.ValidString(got) {
		t.Fatalf("Summary produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Summary = %q, want ellipsis suffix", got)
	}
	if n := utf8.RuneCountInString(got); n != summaryMaxLen+3 {
		t.Errorf("Summary rune count = %d, want %d", n, summaryMaxLen+3)
	}
}

func TestSummaryUsesFirstThreeEntries(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("a", "c1", "", "one", 0),
		entryAt("b", "c1", "", "two", time.Minute),
		entryAt("c", "c1", "", "three", 2*time.Minute),
		entryAt("d", "c1", "", "four", 3*time.Minute),
	})
	if got := conv.Summary(); got != "one two three" {
		t.Errorf("Summary = %q, want the first three entries", got)
	}
}

func TestSummaryEmpty(t *testing.T) {
	conv := NewConversation("c1", nil)
	if got := conv.Summary(); got != "Empty conversation" {
		t.Errorf("Summary = %q", got)
	}
}

func TestConversationTotals(t *testing.T) {
	d1, d2 := 5.0, 10.0
	w1, w2 := 3, 7
	conv := NewConversation("c1", []Entry{
		{ID: "a", Timestamp: convBase, Duration: &d1, NumWords: &w1, Status: StatusFormatted},
		{ID: "b", Timestamp: convBase.Add(time.Minute), Duration: &d2, NumWords: &w2, Status: StatusFormatted},
		{ID: "c", Timestamp: convBase.Add(2 * time.Minute), Status: StatusFormatted},
	})
	if conv.Duration() != 15 {
		t.Errorf("Duration = %v, want 15", conv.Duration())
	}
	if conv.TotalWords() != 10 {
		t.Errorf("TotalWords = %d, want 10", conv.TotalWords())
	}
	if conv.EntryCount() != 3 {
		t.Errorf("EntryCount = %d, want 3", conv.EntryCount())
	}
}

func TestMarkdownRendering(t *testing.T) {
	conv := NewConversation("c1", []Entry{
		entryAt("a", "c1", "com.tinyspeck.slackmacgap", "standup notes", 0),
	})
	md := conv.Markdown()
	if !strings.Contains(md, "# Conversation: c1") {
		t.Error("markdown must carry the conversation heading")
	}
	if !strings.Contains(md, "**App:** Slack") {
		t.Error("markdown must name the app")
	}
	if !strings.Contains(md, "standup notes") {
		t.Error("markdown must include entry text")
	}
}
