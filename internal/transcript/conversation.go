package transcript

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Summary rendering constants.
const (
	summaryMaxLen  = 100
	summaryEntries = 3
)

// Conversation is a derived grouping of entries sharing a conversation
// identifier. It is constructed on demand from a result set and never cached.
type Conversation struct {
	ID      string
	Entries []Entry // ascending by timestamp
	App     string  // most frequent non-empty app among members
}

// NewConversation builds a conversation from its member entries, sorting them
// by timestamp ascending and deriving the dominant app. Ties on app frequency
// go to the app seen first.
func NewConversation(id string, entries []Entry) Conversation {
	members := make([]Entry, len(entries))
	copy(members, entries)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Timestamp.Before(members[j].Timestamp)
	})

	counts := map[string]int{}
	var app string
	for _, e := range members {
		if e.App == "" {
			continue
		}
		counts[e.App]++
		if app == "" || counts[e.App] > counts[app] {
			app = e.App
		}
	}

	return Conversation{ID: id, Entries: members, App: app}
}

// GroupConversations partitions entries by conversation identifier and
// returns conversations ordered most-recently-active first (end timestamp
// descending). Entries without a conversation identifier are dropped unless
// includeSingletons is set, in which case each becomes its own conversation
// under a synthetic "single_<id>" identifier.
func GroupConversations(entries []Entry, includeSingletons bool) []Conversation {
	groups := map[string][]Entry{}
	var order []string
	for _, e := range entries {
		id := e.ConversationID
		if id == "" {
			if !includeSingletons {
				continue
			}
			id = "single_" + e.ID
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], e)
	}

	convs := make([]Conversation, 0, len(order))
	for _, id := range order {
		convs = append(convs, NewConversation(id, groups[id]))
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].EndTime().After(convs[j].EndTime())
	})
	return convs
}

// StartTime is the timestamp of the earliest member.
func (c Conversation) StartTime() time.Time {
	if len(c.Entries) == 0 {
		return time.Time{}
	}
	return c.Entries[0].Timestamp
}

// EndTime is the timestamp of the latest member.
func (c Conversation) EndTime() time.Time {
	if len(c.Entries) == 0 {
		return time.Time{}
	}
	return c.Entries[len(c.Entries)-1].Timestamp
}

// Duration sums member durations. Members without a recorded duration
// contribute zero but still count as members.
func (c Conversation) Duration() float64 {
	var total float64
	for _, e := range c.Entries {
		total += e.Seconds()
	}
	return total
}

// TotalWords sums member word counts.
func (c Conversation) TotalWords() int {
	var total int
	for _, e := range c.Entries {
		total += e.WordCount()
	}
	return total
}

// EntryCount is the number of member entries.
func (c Conversation) EntryCount() int { return len(c.Entries) }

// AppName returns the display name of the dominant app.
func (c Conversation) AppName() string { return AppDisplayName(c.App) }

// FullText joins the display text of every member.
func (c Conversation) FullText() string {
	var texts []string
	for _, e := range c.Entries {
		if t := e.DisplayText(); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " ")
}

// QualityScore averages member quality scores.
func (c Conversation) QualityScore() float64 {
	if len(c.Entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range c.Entries {
		total += e.QualityScore()
	}
	return total / float64(len(c.Entries))
}

// HasAudio reports whether any member captured audio.
func (c Conversation) HasAudio() bool {
	for _, e := range c.Entries {
		if e.HasAudio() {
			return true
		}
	}
	return false
}

// Summary concatenates the display text of the first few members and trims
// the result to a fixed length, breaking at a word boundary when one falls
// late enough.
func (c Conversation) Summary() string {
	if len(c.Entries) == 0 {
		return "Empty conversation"
	}
	var texts []string
	for _, e := range c.Entries {
		if len(texts) == summaryEntries {
			break
		}
		if t := e.DisplayText(); t != "" {
			texts = append(texts, t)
		}
	}
	full := strings.Join(texts, " ")
	if utf8.RuneCountInString(full) <= summaryMaxLen {
		return full
	}
	// Cut on rune boundaries so multi-byte text never yields invalid UTF-8.
	runes := []rune(full)[:summaryMaxLen]
	if i := lastSpace(runes); i > summaryMaxLen/2 {
		runes = runes[:i]
	}
	return string(runes) + "..."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// Markdown renders the conversation as a markdown document.
func (c Conversation) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversation: %s\n", c.ID)
	fmt.Fprintf(&b, "**App:** %s\n", c.AppName())
	if !c.StartTime().IsZero() {
		fmt.Fprintf(&b, "**Start:** %s\n", c.StartTime().Format("2006-01-02 15:04:05"))
	}
	if !c.EndTime().IsZero() {
		fmt.Fprintf(&b, "**End:** %s\n", c.EndTime().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "**Duration:** %.1fs\n", c.Duration())
	fmt.Fprintf(&b, "**Total Words:** %d\n", c.TotalWords())
	fmt.Fprintf(&b, "**Entries:** %d\n\n", c.EntryCount())

	b.WriteString("## Transcript\n")
	for i, e := range c.Entries {
		fmt.Fprintf(&b, "### Entry %d\n", i+1)
		if !e.Timestamp.IsZero() {
			fmt.Fprintf(&b, "**Time:** %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
		}
		if e.Duration != nil {
			fmt.Fprintf(&b, "**Duration:** %.1fs\n", *e.Duration)
		}
		if e.NumWords != nil {
			fmt.Fprintf(&b, "**Words:** %d\n", *e.NumWords)
		}
		fmt.Fprintf(&b, "**Status:** %s\n\n", e.Status)
		b.WriteString(e.DisplayText())
		b.WriteString("\n\n")
	}
	return b.String()
}

// MarshalJSON serializes the conversation with its derived metadata.
func (c Conversation) MarshalJSON() ([]byte, error) {
	type payload struct {
		ID           string  `json:"conversation_id"`
		App          string  `json:"app,omitempty"`
		AppName      string  `json:"app_name"`
		StartTime    string  `json:"start_time,omitempty"`
		EndTime      string  `json:"end_time,omitempty"`
		Duration     float64 `json:"duration"`
		TotalWords   int     `json:"total_words"`
		EntryCount   int     `json:"entry_count"`
		Summary      string  `json:"summary"`
		QualityScore float64 `json:"quality_score"`
		HasAudio     bool    `json:"has_audio"`
		Entries      []Entry `json:"entries"`
	}
	p := payload{
		ID:           c.ID,
		App:          c.App,
		AppName:      c.AppName(),
		Duration:     c.Duration(),
		TotalWords:   c.TotalWords(),
		EntryCount:   c.EntryCount(),
		Summary:      c.Summary(),
		QualityScore: c.QualityScore(),
		HasAudio:     c.HasAudio(),
		Entries:      c.Entries,
	}
	if !c.StartTime().IsZero() {
		p.StartTime = c.StartTime().UTC().Format(time.RFC3339)
	}
	if !c.EndTime().IsZero() {
		p.EndTime = c.EndTime().UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}
