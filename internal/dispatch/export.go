package dispatch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/store"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// Export format names.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

func (d *Dispatcher) export(r ExportRequest) (ExportResult, error) {
	format := r.Format
	if format == "" {
		format = FormatJSON
	}
	switch format {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
	default:
		return ExportResult{}, errs.Newf(errs.InvalidParameters, "unknown export format %q", r.Format)
	}

	f, err := d.buildFilter(r.Since, r.Until, r.App)
	if err != nil {
		return ExportResult{}, err
	}
	f.Limit = r.Limit
	if f.Limit == 0 {
		f.Limit = store.MaxLimit
	}

	entries, err := d.store.Query(f)
	if err != nil {
		return ExportResult{}, err
	}

	if r.GroupByConversation {
		convs := transcript.GroupConversations(entries, true)
		content, err := renderConversations(convs, format)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Format: format, Count: len(convs), Content: content}, nil
	}

	content, err := renderEntries(entries, format)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Format: format, Count: len(entries), Content: content}, nil
}

func renderEntries(entries []transcript.Entry, format string) (string, error) {
	switch format {
	case FormatCSV:
		return entriesCSV(entries)
	case FormatMarkdown:
		var b strings.Builder
		b.WriteString("# Transcript Export\n\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "## %s\n", e.ID)
			if !e.Timestamp.IsZero() {
				fmt.Fprintf(&b, "**Time:** %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(&b, "**App:** %s\n\n%s\n\n", e.AppName(), e.DisplayText())
		}
		return b.String(), nil
	case FormatText:
		var lines []string
		for _, e := range entries {
			if text := e.DisplayText(); text != "" {
				lines = append(lines, text)
			}
		}
		return strings.Join(lines, "\n"), nil
	default:
		return exportJSON(entries, len(entries), false)
	}
}

func renderConversations(convs []transcript.Conversation, format string) (string, error) {
	switch format {
	case FormatCSV:
		return conversationsCSV(convs)
	case FormatMarkdown:
		var b strings.Builder
		for _, c := range convs {
			b.WriteString(c.Markdown())
			b.WriteString("\n---\n\n")
		}
		return b.String(), nil
	case FormatText:
		var lines []string
		for _, c := range convs {
			lines = append(lines, c.FullText())
		}
		return strings.Join(lines, "\n\n"), nil
	default:
		return exportJSON(convs, len(convs), true)
	}
}

func exportJSON(data any, count int, grouped bool) (string, error) {
	envelope := map[string]any{
		"format":                  "flowscribe_export",
		"version":                 "1.0",
		"count":                   count,
		"grouped_by_conversation": grouped,
		"data":                    data,
	}
	b, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(b), nil
}

func entriesCSV(entries []transcript.Entry) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"transcript_id", "timestamp", "app", "status", "duration", "num_words", "conversation_id", "text"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			formatCSVTime(e.Timestamp),
			e.AppName(),
			e.Status,
			formatCSVFloat(e.Duration),
			formatCSVInt(e.NumWords),
			e.ConversationID,
			e.DisplayText(),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func conversationsCSV(convs []transcript.Conversation) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"conversation_id", "app", "start_time", "end_time", "duration", "total_words", "entry_count", "summary"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range convs {
		record := []string{
			c.ID,
			c.AppName(),
			formatCSVTime(c.StartTime()),
			formatCSVTime(c.EndTime()),
			strconv.FormatFloat(c.Duration(), 'f', 1, 64),
			strconv.Itoa(c.TotalWords()),
			strconv.Itoa(c.EntryCount()),
			c.Summary(),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatCSVFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func formatCSVInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
