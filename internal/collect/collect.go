// Package collect builds per-calendar-day text corpora from transcript
// entries. It is a pure transform: buckets are returned in memory and writing
// them anywhere is the caller's concern.
package collect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// Form selects how a day's corpus is rendered.
type Form string

const (
	FormRaw       Form = "raw"
	FormWords     Form = "words"
	FormSentences Form = "sentences"
	FormEntries   Form = "entries"
)

// ParseForm validates an output form name. An empty name means raw.
func ParseForm(s string) (Form, error) {
	switch Form(s) {
	case FormRaw, FormWords, FormSentences, FormEntries:
		return Form(s), nil
	case "":
		return FormRaw, nil
	}
	return "", errs.Newf(errs.InvalidParameters, "unknown output form %q", s)
}

// Entries with fewer words than this are dropped when short entries are
// excluded.
const shortEntryWords = 5

// Options narrow the entry set before bucketing. The app-exclusion list
// layers on top of any app filter already applied upstream.
type Options struct {
	MinWords     int
	ExcludeShort bool
	ExcludeApps  []string
}

// Corpus is the collected text for one local calendar day.
type Corpus struct {
	Date      string             `json:"date"` // YYYY-MM-DD, local
	Entries   []transcript.Entry `json:"entries"`
	Body      string             `json:"body"`
	WordCount int                `json:"word_count"`
}

// Collect filters entries, buckets the survivors by their local calendar
// date, and renders each bucket in the requested form. Buckets are returned
// in date order with members ordered by timestamp ascending.
func Collect(entries []transcript.Entry, form Form, opts Options) []Corpus {
	buckets := map[string][]transcript.Entry{}
	for _, e := range entries {
		if !keep(e, opts) {
			continue
		}
		date := e.Timestamp.Local().Format("2006-01-02")
		buckets[date] = append(buckets[date], e)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]Corpus, 0, len(dates))
	for _, date := range dates {
		members := buckets[date]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Timestamp.Before(members[j].Timestamp)
		})
		body := render(date, members, form)
		days = append(days, Corpus{
			Date:      date,
			Entries:   members,
			Body:      body,
			WordCount: countWords(body),
		})
	}
	return days
}

func keep(e transcript.Entry, opts Options) bool {
	text := strings.TrimSpace(e.DisplayText())
	if text == "" || e.Timestamp.IsZero() {
		return false
	}
	switch e.Status {
	case transcript.StatusEmpty, transcript.StatusNoAudio, transcript.StatusDismissed:
		return false
	}
	if opts.MinWords > 0 && e.NumWords != nil && *e.NumWords < opts.MinWords {
		return false
	}
	if opts.ExcludeShort && e.NumWords != nil && *e.NumWords < shortEntryWords {
		return false
	}
	appName := strings.ToLower(e.AppName())
	for _, excluded := range opts.ExcludeApps {
		if excluded != "" && strings.Contains(appName, strings.ToLower(excluded)) {
			return false
		}
	}
	return true
}

func render(date string, members []transcript.Entry, form Form) string {
	switch form {
	case FormWords:
		header := fmt.Sprintf("# Words spoken on %s\n# Total entries: %d\n# Total words: %d\n",
			date, len(members), totalWords(members))
		return header + rawBody(members)
	case FormSentences:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s (%d entries)\n", date, len(members))
		for _, e := range members {
			for _, sentence := range splitSentences(e.DisplayText()) {
				b.WriteString(sentence)
				b.WriteByte('\n')
			}
		}
		return strings.TrimRight(b.String(), "\n")
	case FormEntries:
		var lines []string
		for _, e := range members {
			lines = append(lines, fmt.Sprintf("[%s] [%s] %s",
				e.Timestamp.Local().Format("15:04:05"), e.AppName(), normalizeSpace(e.DisplayText())))
		}
		return strings.Join(lines, "\n")
	default: // FormRaw
		return rawBody(members)
	}
}

func rawBody(members []transcript.Entry) string {
	var lines []string
	for _, e := range members {
		if text := normalizeSpace(e.DisplayText()); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

func totalWords(members []transcript.Entry) int {
	var total int
	for _, e := range members {
		total += e.WordCount()
	}
	return total
}

// normalizeSpace collapses runs of whitespace and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var sentenceEnd = regexp.MustCompile(`([.!?]+)\s+`)

// splitSentences breaks text on sentence-terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	text = normalizeSpace(text)
	if text == "" {
		return nil
	}
	marked := sentenceEnd.ReplaceAllString(text, "$1\n")
	var sentences []string
	for _, s := range strings.Split(marked, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// countWords counts whitespace-separated words in a rendered body, skipping
// header lines.
func countWords(body string) int {
	var total int
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		total += len(strings.Fields(line))
	}
	return total
}
