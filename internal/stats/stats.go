// Package stats computes aggregate metrics over transcript entries. Averages
// are null-safe: they are taken only over entries that carry the relevant
// field, and an empty input yields undefined (nil) averages, never zero or
// NaN.
package stats

import (
	"sort"
	"time"

	"github.com/jwulff/flowscribe/internal/transcript"
)

// Summary is the aggregate view over a selected entry set.
type Summary struct {
	TotalEntries    int            `json:"total_entries"`
	ActiveEntries   int            `json:"active_entries"`
	ArchivedEntries int            `json:"archived_entries"`
	TotalDuration   float64        `json:"total_duration"`
	TotalWords      int            `json:"total_words"`
	AvgDuration     *float64       `json:"avg_duration,omitempty"`
	AvgWords        *float64       `json:"avg_words,omitempty"`
	QualityScore    *float64       `json:"quality_score,omitempty"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	FirstEntry      *time.Time     `json:"first_entry,omitempty"`
	LastEntry       *time.Time     `json:"last_entry,omitempty"`
}

// Summarize computes a summary from a set of entries.
func Summarize(entries []transcript.Entry) Summary {
	s := Summary{StatusBreakdown: map[string]int{}}

	var (
		durationSum, wordSum, confidenceSum float64
		durationN, wordN, confidenceN       int
	)
	for _, e := range entries {
		s.TotalEntries++
		if e.IsArchived {
			s.ArchivedEntries++
		} else {
			s.ActiveEntries++
		}

		status := e.Status
		if status == "" {
			status = "unknown"
		}
		s.StatusBreakdown[status]++

		if e.Duration != nil {
			s.TotalDuration += *e.Duration
			durationSum += *e.Duration
			durationN++
		}
		if e.NumWords != nil {
			s.TotalWords += *e.NumWords
			wordSum += float64(*e.NumWords)
			wordN++
		}
		if e.Confidence != nil {
			confidenceSum += *e.Confidence
			confidenceN++
		}

		if !e.Timestamp.IsZero() {
			ts := e.Timestamp
			if s.FirstEntry == nil || ts.Before(*s.FirstEntry) {
				t := ts
				s.FirstEntry = &t
			}
			if s.LastEntry == nil || ts.After(*s.LastEntry) {
				t := ts
				s.LastEntry = &t
			}
		}
	}

	s.AvgDuration = mean(durationSum, durationN)
	s.AvgWords = mean(wordSum, wordN)
	s.QualityScore = mean(confidenceSum, confidenceN)
	return s
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

// AppStat aggregates usage for one source application.
type AppStat struct {
	ID            string     `json:"app_id"`
	Name          string     `json:"app_name"`
	Entries       int        `json:"total_entries"`
	TotalDuration float64    `json:"total_duration"`
	TotalWords    int        `json:"total_words"`
	AvgLatency    *float64   `json:"avg_latency,omitempty"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
}

// SortKey selects the per-app breakdown ordering.
type SortKey string

const (
	SortByEntries  SortKey = "entries"
	SortByWords    SortKey = "words"
	SortByDuration SortKey = "duration"
	SortByLatency  SortKey = "latency"
	SortByLastUsed SortKey = "last_used"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortByEntries, SortByWords, SortByDuration, SortByLatency, SortByLastUsed:
		return SortKey(s), true
	case "":
		return SortByEntries, true
	}
	return "", false
}

// AppsFromEntries builds per-app aggregates from an entry set, for filtered
// breakdowns computed outside SQL.
func AppsFromEntries(entries []transcript.Entry) []AppStat {
	byApp := map[string]*AppStat{}
	latencySums := map[string]float64{}
	latencyCounts := map[string]int{}
	var order []string

	for _, e := range entries {
		if e.App == "" {
			continue
		}
		st, ok := byApp[e.App]
		if !ok {
			st = &AppStat{ID: e.App, Name: e.AppName()}
			byApp[e.App] = st
			order = append(order, e.App)
		}
		st.Entries++
		st.TotalDuration += e.Seconds()
		st.TotalWords += e.WordCount()
		if e.E2ELatency != nil {
			latencySums[e.App] += *e.E2ELatency
			latencyCounts[e.App]++
		}
		if !e.Timestamp.IsZero() && (st.LastUsed == nil || e.Timestamp.After(*st.LastUsed)) {
			t := e.Timestamp
			st.LastUsed = &t
		}
	}

	apps := make([]AppStat, 0, len(order))
	for _, id := range order {
		st := *byApp[id]
		st.AvgLatency = mean(latencySums[id], latencyCounts[id])
		apps = append(apps, st)
	}
	return apps
}

// SortApps drops apps below the minimum entry count, then orders the rest by
// the sort key descending with ties broken by app identifier ascending.
func SortApps(apps []AppStat, key SortKey, minEntries int) []AppStat {
	kept := make([]AppStat, 0, len(apps))
	for _, a := range apps {
		if a.Entries >= minEntries {
			kept = append(kept, a)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		av, bv := sortValue(a, key), sortValue(b, key)
		if av != bv {
			return av > bv
		}
		return a.ID < b.ID
	})
	return kept
}

func sortValue(a AppStat, key SortKey) float64 {
	switch key {
	case SortByWords:
		return float64(a.TotalWords)
	case SortByDuration:
		return a.TotalDuration
	case SortByLatency:
		if a.AvgLatency == nil {
			return 0
		}
		return *a.AvgLatency
	case SortByLastUsed:
		if a.LastUsed == nil {
			return 0
		}
		return float64(a.LastUsed.UnixNano())
	default:
		return float64(a.Entries)
	}
}
