// Package transcript defines the domain types for dictation history: single
// entries and the conversations they group into.
package transcript

import (
	"encoding/json"
	"time"
)

// Processing statuses as stored in the history table.
const (
	StatusFormatted      = "formatted"
	StatusEmpty          = "empty"
	StatusDismissed      = "dismissed"
	StatusNoAudio        = "no_audio"
	StatusExtensionOther = "extension_other"
	StatusExtensionPaste = "extension_paste"
	StatusBlank          = "blank"
)

// Entry is one transcription record, reconstructed fresh from storage on
// every query and never mutated.
type Entry struct {
	ID                string
	ASRText           string
	FormattedText     string
	EditedText        string
	Timestamp         time.Time
	App               string
	URL               string
	Duration          *float64
	NumWords          *int
	Status            string
	Language          string
	ConversationID    string
	E2ELatency        *float64
	Confidence        *float64
	IsArchived        bool
	AdditionalContext string // raw JSON blob, may be empty
}

// DisplayText resolves the single text value representing the entry. The
// precedence mirrors the audio pipeline: user edit wins over AI formatting,
// which wins over raw speech recognition.
func (e Entry) DisplayText() string {
	if e.EditedText != "" {
		return e.EditedText
	}
	if e.FormattedText != "" {
		return e.FormattedText
	}
	if e.ASRText != "" {
		return e.ASRText
	}
	return ""
}

// QualityScore estimates transcription quality. Recognition confidence is
// used when recorded; otherwise the status and word count stand in.
func (e Entry) QualityScore() float64 {
	if e.Confidence != nil {
		return *e.Confidence
	}
	if e.Status == StatusFormatted && e.NumWords != nil && *e.NumWords > 0 {
		return 0.8
	}
	if e.Status == StatusEmpty || e.DisplayText() == "" {
		return 0.1
	}
	return 0.5
}

// HasAudio reports whether the entry captured any audio.
func (e Entry) HasAudio() bool {
	return e.Status != StatusNoAudio && e.Status != StatusEmpty
}

// WordCount returns the recorded word count, or 0 when unknown.
func (e Entry) WordCount() int {
	if e.NumWords == nil {
		return 0
	}
	return *e.NumWords
}

// Seconds returns the recorded duration, or 0 when unknown.
func (e Entry) Seconds() float64 {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

// UserContext extracts the interesting parts of the additional-context blob:
// the user field, accessibility text, and the active URL.
func (e Entry) UserContext() map[string]any {
	if e.AdditionalContext == "" {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(e.AdditionalContext), &data); err != nil {
		return map[string]any{}
	}
	ctx := map[string]any{}
	if v, ok := data["user"]; ok {
		ctx["user"] = v
	}
	if v, ok := data["axText"]; ok {
		ctx["accessibility_text"] = v
	}
	if v, ok := data["activeUrl"]; ok {
		ctx["active_url"] = v
	}
	return ctx
}

// MarshalJSON serializes the entry together with its derived fields so that
// transports and exports never recompute them.
func (e Entry) MarshalJSON() ([]byte, error) {
	type payload struct {
		ID             string   `json:"transcript_id"`
		ASRText        string   `json:"asr_text,omitempty"`
		FormattedText  string   `json:"formatted_text,omitempty"`
		EditedText     string   `json:"edited_text,omitempty"`
		Timestamp      string   `json:"timestamp,omitempty"`
		App            string   `json:"app,omitempty"`
		AppName        string   `json:"app_name"`
		URL            string   `json:"url,omitempty"`
		Duration       *float64 `json:"duration,omitempty"`
		NumWords       *int     `json:"num_words,omitempty"`
		Status         string   `json:"status,omitempty"`
		Language       string   `json:"language,omitempty"`
		ConversationID string   `json:"conversation_id,omitempty"`
		E2ELatency     *float64 `json:"e2e_latency,omitempty"`
		Confidence     *float64 `json:"confidence,omitempty"`
		IsArchived     bool     `json:"is_archived"`
		DisplayText    string   `json:"display_text"`
		QualityScore   float64  `json:"quality_score"`
		HasAudio       bool     `json:"has_audio"`
	}
	p := payload{
		ID:             e.ID,
		ASRText:        e.ASRText,
		FormattedText:  e.FormattedText,
		EditedText:     e.EditedText,
		App:            e.App,
		AppName:        e.AppName(),
		URL:            e.URL,
		Duration:       e.Duration,
		NumWords:       e.NumWords,
		Status:         e.Status,
		Language:       e.Language,
		ConversationID: e.ConversationID,
		E2ELatency:     e.E2ELatency,
		Confidence:     e.Confidence,
		IsArchived:     e.IsArchived,
		DisplayText:    e.DisplayText(),
		QualityScore:   e.QualityScore(),
		HasAudio:       e.HasAudio(),
	}
	if !e.Timestamp.IsZero() {
		p.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}
