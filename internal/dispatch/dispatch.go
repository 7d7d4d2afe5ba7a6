// Package dispatch is the single entry point for every read operation. Both
// the CLI and the MCP transport build a typed request and hand it to
// Dispatch; the request set is a closed union, so an unhandled operation is a
// compile-time exhaustiveness gap rather than a runtime fallthrough.
package dispatch

import (
	"time"

	"github.com/jwulff/flowscribe/internal/collect"
	"github.com/jwulff/flowscribe/internal/dateparse"
	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/stats"
	"github.com/jwulff/flowscribe/internal/store"
	"github.com/jwulff/flowscribe/internal/transcript"
)

// Op names a logical operation.
type Op string

const (
	OpList          Op = "list"
	OpSearch        Op = "search"
	OpShow          Op = "show"
	OpStats         Op = "stats"
	OpApps          Op = "apps"
	OpExport        Op = "export"
	OpCollect       Op = "collect"
	OpConversations Op = "conversations"
	OpConversation  Op = "conversation"
	OpDictionary    Op = "dictionary"
)

// Per-operation default result limits.
const (
	defaultSearchLimit        = 50
	defaultConversationsLimit = 10
	defaultAppsLimit          = 20
	defaultCollectSince       = "7d"
)

// Request is one of the typed operation requests below.
type Request interface{ op() Op }

// ListRequest lists entries matching filters, newest first.
type ListRequest struct {
	Since           string
	Until           string
	App             string
	Status          string
	ConversationID  string
	MinWords        int
	Limit           int
	Offset          int
	IncludeArchived bool
}

// SearchRequest finds entries containing text.
type SearchRequest struct {
	Query           string
	Since           string
	Until           string
	App             string
	Limit           int
	AllFields       bool
	IncludeArchived bool
}

// ShowRequest fetches one entry by full or prefix identifier.
type ShowRequest struct {
	ID string
}

// StatsRequest computes aggregate statistics, whole-database when no filter
// is given.
type StatsRequest struct {
	Since string
	Until string
	App   string
}

// AppsRequest computes the per-app usage breakdown, whole-database when no
// filter is given.
type AppsRequest struct {
	Since      string
	Until      string
	App        string
	SortBy     string
	MinEntries int
	Limit      int
}

// ExportRequest renders entries (or conversations) in an export format.
type ExportRequest struct {
	Format              string
	Since               string
	Until               string
	App                 string
	Limit               int
	GroupByConversation bool
}

// CollectRequest builds per-day text corpora.
type CollectRequest struct {
	Since        string
	Until        string
	App          string
	Form         string
	MinWords     int
	ExcludeShort bool
	ExcludeApps  []string
}

// ConversationsRequest lists conversations, most recently active first.
type ConversationsRequest struct {
	Since           string
	Until           string
	App             string
	Limit           int
	IncludeSingles  bool
	IncludeArchived bool
}

// ConversationRequest fetches one conversation by identifier.
type ConversationRequest struct {
	ID       string
	Markdown bool
}

// DictionaryRequest lists custom dictionary entries.
type DictionaryRequest struct{}

func (ListRequest) op() Op          { return OpList }
func (SearchRequest) op() Op        { return OpSearch }
func (ShowRequest) op() Op          { return OpShow }
func (StatsRequest) op() Op         { return OpStats }
func (AppsRequest) op() Op          { return OpApps }
func (ExportRequest) op() Op        { return OpExport }
func (CollectRequest) op() Op       { return OpCollect }
func (ConversationsRequest) op() Op { return OpConversations }
func (ConversationRequest) op() Op  { return OpConversation }
func (DictionaryRequest) op() Op    { return OpDictionary }

// Result payloads.

type ListResult struct {
	Entries []transcript.Entry `json:"transcripts"`
	Count   int                `json:"count"`
}

type SearchResult struct {
	Entries       []transcript.Entry `json:"transcripts"`
	Count         int                `json:"count"`
	Query         string             `json:"query"`
	TotalDuration float64            `json:"total_duration"`
	TotalWords    int                `json:"total_words"`
}

type ShowResult struct {
	Entry   transcript.Entry `json:"transcript"`
	Context map[string]any   `json:"user_context,omitempty"`
}

type StatsResult struct {
	stats.Summary
	Filtered     bool   `json:"filtered"`
	DatabasePath string `json:"database_path,omitempty"`
}

type AppsResult struct {
	Apps     []stats.AppStat `json:"apps"`
	Count    int             `json:"count"`
	SortBy   string          `json:"sort_by"`
	Filtered bool            `json:"filtered"`
}

type ExportResult struct {
	Format  string `json:"format"`
	Count   int    `json:"count"`
	Content string `json:"content"`
}

type CollectResult struct {
	Days         []collect.Corpus `json:"days"`
	TotalEntries int              `json:"total_entries"`
	TotalWords   int              `json:"total_words"`
}

type ConversationsResult struct {
	Conversations []transcript.Conversation `json:"conversations"`
	Count         int                       `json:"count"`
}

type ConversationResult struct {
	Conversation transcript.Conversation `json:"conversation"`
	Markdown     string                  `json:"markdown,omitempty"`
}

type DictionaryResult struct {
	Entries []store.DictionaryEntry `json:"dictionary_entries"`
	Count   int                     `json:"count"`
}

// Dispatcher validates requests and routes them to the query components. It
// holds no cached state: every dispatch reads the store live.
type Dispatcher struct {
	store *store.Store
	now   func() time.Time
}

// New returns a dispatcher over the given store. The now function supplies
// the reference instant for relative-date expressions.
func New(st *store.Store, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{store: st, now: now}
}

// Dispatch executes a request and returns its typed result. Failures are
// returned as errs.Error values; no partial execution happens after a
// validation failure.
func (d *Dispatcher) Dispatch(req Request) (any, error) {
	switch r := req.(type) {
	case ListRequest:
		return d.list(r)
	case SearchRequest:
		return d.search(r)
	case ShowRequest:
		return d.show(r)
	case StatsRequest:
		return d.stats(r)
	case AppsRequest:
		return d.apps(r)
	case ExportRequest:
		return d.export(r)
	case CollectRequest:
		return d.collect(r)
	case ConversationsRequest:
		return d.conversations(r)
	case ConversationRequest:
		return d.conversation(r)
	case DictionaryRequest:
		return d.dictionary(r)
	default:
		return nil, errs.Newf(errs.UnknownOperation, "unknown operation %T", req)
	}
}

// buildFilter resolves date expressions and the app name into a store filter.
func (d *Dispatcher) buildFilter(since, until, app string) (store.Filter, error) {
	var f store.Filter
	if since != "" {
		t, err := dateparse.Parse(since, d.now())
		if err != nil {
			return f, err
		}
		f.Start = &t
	}
	if until != "" {
		t, err := dateparse.Parse(until, d.now())
		if err != nil {
			return f, err
		}
		f.End = &t
	}
	f.App = transcript.ResolveAppFilter(app)
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return f, errs.New(errs.InvalidParameters, "start date is after end date")
	}
	return f, nil
}

func (d *Dispatcher) list(r ListRequest) (ListResult, error) {
	f, err := d.buildFilter(r.Since, r.Until, r.App)
	if err != nil {
		return ListResult{}, err
	}
	f.Status = r.Status
	f.ConversationID = r.ConversationID
	f.MinWords = r.MinWords
	f.Limit = r.Limit
	f.Offset = r.Offset
	f.IncludeArchived = r.IncludeArchived

	entries, err := d.store.Query(f)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Entries: entries, Count: len(entries)}, nil
}

func (d *Dispatcher) search(r SearchRequest) (SearchResult, error) {
	if r.Query == "" {
		return SearchResult{}, errs.New(errs.InvalidParameters, "search query must not be empty")
	}
	f, err := d.buildFilter(r.Since, r.Until, r.App)
	if err != nil {
		return SearchResult{}, err
	}
	f.Search = r.Query
	f.SearchAllFields = r.AllFields
	f.IncludeArchived = r.IncludeArchived
	f.Limit = r.Limit
	if f.Limit == 0 {
		f.Limit = defaultSearchLimit
	}

	entries, err := d.store.Query(f)
	if err != nil {
		return SearchResult{}, err
	}
	res := SearchResult{Entries: entries, Count: len(entries), Query: r.Query}
	for _, e := range entries {
		res.TotalDuration += e.Seconds()
		res.TotalWords += e.WordCount()
	}
	return res, nil
}

func (d *Dispatcher) show(r ShowRequest) (ShowResult, error) {
	entry, err := d.store.GetByID(r.ID)
	if err != nil {
		return ShowResult{}, err
	}
	res := ShowResult{Entry: entry}
	if ctx := entry.UserContext(); len(ctx) > 0 {
		res.Context = ctx
	}
	return res, nil
}

func (d *Dispatcher) stats(r StatsRequest) (StatsResult, error) {
	if r.Since == "" && r.Until == "" && r.App == "" {
		sum, err := d.store.Stats()
		if err != nil {
			return StatsResult{}, err
		}
		return StatsResult{Summary: sum, DatabasePath: d.store.Path()}, nil
	}

	f, err := d.buildFilter(r.Since, r.Until, r.App)
	if err != nil {
		return StatsResult{}, err
	}
	f.Limit = store.MaxLimit
	f.IncludeArchived = true
	entries, err := d.store.Query(f)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{Summary: stats.Summarize(entries), Filtered: true}, nil
}

func (d *Dispatcher) apps(r AppsRequest) (AppsResult, error) {
	key, ok := stats.ParseSortKey(r.SortBy)
	if !ok {
		return AppsResult{}, errs.Newf(errs.InvalidParameters, "unknown sort key %q", r.SortBy)
	}
	if r.MinEntries < 0 {
		return AppsResult{}, errs.Newf(errs.InvalidParameters, "min entries must not be negative, got %d", r.MinEntries)
	}
	limit := r.Limit
	if limit == 0 {
		limit = defaultAppsLimit
	}
	if limit < 0 || limit > store.MaxLimit {
		return AppsResult{}, errs.Newf(errs.InvalidParameters, "limit must be between 1 and %d, got %d", store.MaxLimit, limit)
	}

	var apps []stats.AppStat
	filtered := r.Since != "" || r.Until != "" || r.App != ""
	if filtered {
		f, err := d.buildFilter(r.Since, r.Until, r.App)
		if err != nil {
			return AppsResult{}, err
		}
		f.Limit = store.MaxLimit
		f.IncludeArchived = true
		entries, err := d.store.Query(f)
		if err != nil {
			return AppsResult{}, err
		}
		apps = stats.AppsFromEntries(entries)
	} else {
		var err error
		apps, err = d.store.AppAggregates()
		if err != nil {
			return AppsResult{}, err
		}
	}
	apps = stats.SortApps(apps, key, r.MinEntries)
	if len(apps) > limit {
		apps = apps[:limit]
	}
	return AppsResult{Apps: apps, Count: len(apps), SortBy: string(key), Filtered: filtered}, nil
}

func (d *Dispatcher) collect(r CollectRequest) (CollectResult, error) {
	form, err := collect.ParseForm(r.Form)
	if err != nil {
		return CollectResult{}, err
	}
	if r.MinWords < 0 {
		return CollectResult{}, errs.Newf(errs.InvalidParameters, "min words must not be negative, got %d", r.MinWords)
	}
	since := r.Since
	if since == "" {
		since = defaultCollectSince
	}
	f, err := d.buildFilter(since, r.Until, r.App)
	if err != nil {
		return CollectResult{}, err
	}
	f.Limit = store.MaxLimit

	entries, err := d.store.Query(f)
	if err != nil {
		return CollectResult{}, err
	}
	days := collect.Collect(entries, form, collect.Options{
		MinWords:     r.MinWords,
		ExcludeShort: r.ExcludeShort,
		ExcludeApps:  r.ExcludeApps,
	})
	res := CollectResult{Days: days}
	for _, day := range days {
		res.TotalEntries += len(day.Entries)
		res.TotalWords += day.WordCount
	}
	return res, nil
}

func (d *Dispatcher) conversations(r ConversationsRequest) (ConversationsResult, error) {
	limit := r.Limit
	if limit == 0 {
		limit = defaultConversationsLimit
	}
	if limit < 0 || limit > store.MaxLimit {
		return ConversationsResult{}, errs.Newf(errs.InvalidParameters, "limit must be between 1 and %d, got %d", store.MaxLimit, limit)
	}
	f, err := d.buildFilter(r.Since, r.Until, r.App)
	if err != nil {
		return ConversationsResult{}, err
	}
	f.IncludeArchived = r.IncludeArchived

	// Over-fetch entries so enough groups survive the limit.
	f.Limit = limit * 10
	if f.Limit > store.MaxLimit {
		f.Limit = store.MaxLimit
	}
	entries, err := d.store.Query(f)
	if err != nil {
		return ConversationsResult{}, err
	}
	convs := transcript.GroupConversations(entries, r.IncludeSingles)
	if len(convs) > limit {
		convs = convs[:limit]
	}
	return ConversationsResult{Conversations: convs, Count: len(convs)}, nil
}

func (d *Dispatcher) conversation(r ConversationRequest) (ConversationResult, error) {
	entries, err := d.store.Conversation(r.ID)
	if err != nil {
		return ConversationResult{}, err
	}
	conv := transcript.NewConversation(r.ID, entries)
	res := ConversationResult{Conversation: conv}
	if r.Markdown {
		res.Markdown = conv.Markdown()
	}
	return res, nil
}

func (d *Dispatcher) dictionary(DictionaryRequest) (DictionaryResult, error) {
	entries, err := d.store.Dictionary()
	if err != nil {
		return DictionaryResult{}, err
	}
	return DictionaryResult{Entries: entries, Count: len(entries)}, nil
}
