// Package output renders query results for the terminal. It is a thin
// consumer of the core result types; nothing here changes what a query
// returns.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/flowscribe/internal/store"
	"github.com/jwulff/flowscribe/internal/transcript"
)

const tableTextWidth = 60

// Formatter writes rendered results to w.
type Formatter struct {
	w       io.Writer
	noColor bool
	now     func() time.Time
}

// NewFormatter returns a formatter writing to w. With noColor set, all
// styling is suppressed.
func NewFormatter(w io.Writer, noColor bool) *Formatter {
	return &Formatter{w: w, noColor: noColor, now: time.Now}
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if f.noColor {
		return text
	}
	return s.Render(text)
}

// Error prints an error message.
func (f *Formatter) Error(msg string) {
	fmt.Fprintln(f.w, f.style(ErrorStyle, "Error: "+msg))
}

// Info prints a muted informational message.
func (f *Formatter) Info(msg string) {
	fmt.Fprintln(f.w, f.style(MutedStyle, msg))
}

// Success prints a confirmation message.
func (f *Formatter) Success(msg string) {
	fmt.Fprintln(f.w, f.style(SuccessStyle, msg))
}

// JSON pretty-prints any result payload.
func (f *Formatter) JSON(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EntryTable renders entries as an aligned table, newest first.
func (f *Formatter) EntryTable(entries []transcript.Entry, verbose bool) {
	if len(entries) == 0 {
		f.Info("No entries found.")
		return
	}
	header := fmt.Sprintf("%-10s  %-14s  %-12s  %8s  %6s  %s",
		"ID", "TIME", "APP", "DURATION", "WORDS", "TEXT")
	fmt.Fprintln(f.w, f.style(HeaderStyle, header))
	for _, e := range entries {
		text := strings.Join(strings.Fields(e.DisplayText()), " ")
		if !verbose {
			text = Truncate(text, tableTextWidth)
		}
		fmt.Fprintf(f.w, "%-10s  %-14s  %-12s  %8s  %6d  %s\n",
			shorten(e.ID, 10),
			f.style(TimestampStyle, f.RelativeTime(e.Timestamp)),
			f.style(AppStyle, Truncate(e.AppName(), 12)),
			FormatDuration(e.Seconds()),
			e.WordCount(),
			text)
	}
	fmt.Fprintln(f.w, f.style(MutedStyle, fmt.Sprintf("%d entries", len(entries))))
}

// Entry renders one entry in full.
func (f *Formatter) Entry(e transcript.Entry, allVersions bool, context map[string]any) {
	fmt.Fprintln(f.w, f.style(BoldStyle, "Transcript: "+e.ID))
	fmt.Fprintln(f.w)
	if !e.Timestamp.IsZero() {
		f.field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	}
	f.field("App", e.AppName())
	if e.Status != "" {
		f.field("Status", e.Status)
	}
	if e.Duration != nil {
		f.field("Duration", FormatDuration(*e.Duration))
	}
	if e.NumWords != nil {
		f.field("Words", fmt.Sprintf("%d", *e.NumWords))
	}
	if e.Language != "" {
		f.field("Language", e.Language)
	}
	if e.ConversationID != "" {
		f.field("Conversation", shorten(e.ConversationID, 16))
	}
	if e.Confidence != nil {
		f.field("Confidence", fmt.Sprintf("%.3f", *e.Confidence))
	}
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, e.DisplayText())

	if allVersions {
		fmt.Fprintln(f.w)
		f.textVersion("ASR", e.ASRText)
		f.textVersion("Formatted", e.FormattedText)
		f.textVersion("Edited", e.EditedText)
	}
	if len(context) > 0 {
		fmt.Fprintln(f.w)
		fmt.Fprintln(f.w, f.style(HeaderStyle, "Context:"))
		for k, v := range context {
			f.field(k, fmt.Sprintf("%v", v))
		}
	}
}

func (f *Formatter) field(name, value string) {
	fmt.Fprintf(f.w, "  %s %s\n", f.style(MutedStyle, name+":"), value)
}

func (f *Formatter) textVersion(name, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(f.w, "%s\n%s\n", f.style(HeaderStyle, name+":"), text)
}

// SearchResults renders entries with the query highlighted.
func (f *Formatter) SearchResults(entries []transcript.Entry, query string) {
	if len(entries) == 0 {
		f.Info("No matches found.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(f.w, "%s  %s  %s\n",
			f.style(MutedStyle, shorten(e.ID, 10)),
			f.style(TimestampStyle, f.RelativeTime(e.Timestamp)),
			f.style(AppStyle, e.AppName()))
		fmt.Fprintf(f.w, "  %s\n", f.Highlight(e.DisplayText(), query))
	}
	fmt.Fprintln(f.w, f.style(MutedStyle, fmt.Sprintf("%d matches", len(entries))))
}

// Highlight styles every occurrence of query inside text.
func (f *Formatter) Highlight(text, query string) string {
	spans := store.Matches(text, query)
	if len(spans) == 0 || f.noColor {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, span := range spans {
		b.WriteString(text[prev:span[0]])
		b.WriteString(HighlightStyle.Render(text[span[0]:span[1]]))
		prev = span[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

// ConversationTable renders conversations, most recently active first.
func (f *Formatter) ConversationTable(convs []transcript.Conversation) {
	if len(convs) == 0 {
		f.Info("No conversations found.")
		return
	}
	header := fmt.Sprintf("%-16s  %-14s  %-12s  %8s  %7s  %s",
		"ID", "LAST ACTIVE", "APP", "DURATION", "ENTRIES", "SUMMARY")
	fmt.Fprintln(f.w, f.style(HeaderStyle, header))
	for _, c := range convs {
		fmt.Fprintf(f.w, "%-16s  %-14s  %-12s  %8s  %7d  %s\n",
			shorten(c.ID, 16),
			f.style(TimestampStyle, f.RelativeTime(c.EndTime())),
			f.style(AppStyle, Truncate(c.AppName(), 12)),
			FormatDuration(c.Duration()),
			c.EntryCount(),
			Truncate(c.Summary(), tableTextWidth))
	}
	fmt.Fprintln(f.w, f.style(MutedStyle, fmt.Sprintf("%d conversations", len(convs))))
}

// RelativeTime formats a timestamp compactly relative to now.
func (f *Formatter) RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	local := t.Local()
	now := f.now()
	days := int(now.Sub(local).Hours() / 24)
	switch {
	case days <= 0 && local.Day() == now.Day():
		return local.Format("15:04")
	case days < 2:
		return "Yesterday " + local.Format("15:04")
	case days < 7:
		return local.Format("Mon 15:04")
	default:
		return local.Format("01/02 15:04")
	}
}

// FormatDuration renders seconds as a compact human-readable duration.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.1fh", seconds/3600)
	}
}

// Truncate limits s to max characters with an ellipsis. Cuts fall on rune
// boundaries, never inside a multi-byte character.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func shorten(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}
