package transcript

import (
	"testing"
)

func TestDisplayTextPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"edited wins", Entry{ASRText: "raw", FormattedText: "formatted", EditedText: "edited"}, "edited"},
		{"formatted over raw", Entry{ASRText: "raw", FormattedText: "formatted"}, "formatted"},
		{"raw only", Entry{ASRText: "raw"}, "raw"},
		{"all empty", Entry{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.DisplayText(); got != tt.want {
				t.Errorf("DisplayText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQualityScore(t *testing.T) {
	confidence := 0.93
	words := 12
	zero := 0

	tests := []struct {
		name  string
		entry Entry
		want  float64
	}{
		{"recorded confidence wins", Entry{Confidence: &confidence, Status: StatusFormatted, NumWords: &words}, 0.93},
		{"formatted with words", Entry{Status: StatusFormatted, NumWords: &words}, 0.8},
		{"formatted without words", Entry{Status: StatusFormatted, NumWords: &zero, ASRText: "x"}, 0.5},
		{"empty status", Entry{Status: StatusEmpty}, 0.1},
		{"no text", Entry{Status: StatusDismissed}, 0.1},
		{"dismissed with text", Entry{Status: StatusDismissed, ASRText: "something"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.QualityScore(); got != tt.want {
				t.Errorf("QualityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasAudio(t *testing.T) {
	if (Entry{Status: StatusNoAudio}).HasAudio() {
		t.Error("no_audio entries must report no audio")
	}
	if (Entry{Status: StatusEmpty}).HasAudio() {
		t.Error("empty entries must report no audio")
	}
	if !(Entry{Status: StatusFormatted}).HasAudio() {
		t.Error("formatted entries must report audio")
	}
}

func TestUserContext(t *testing.T) {
	e := Entry{AdditionalContext: `{"user":"jane","axText":"editor pane","activeUrl":"https://example.com","irrelevant":1}`}
	ctx := e.UserContext()
	if ctx["user"] != "jane" {
		t.Errorf("user = %v, want jane", ctx["user"])
	}
	if ctx["accessibility_text"] != "editor pane" {
		t.Errorf("accessibility_text = %v", ctx["accessibility_text"])
	}
	if ctx["active_url"] != "https://example.com" {
		t.Errorf("active_url = %v", ctx["active_url"])
	}
	if _, ok := ctx["irrelevant"]; ok {
		t.Error("unrelated keys must not leak into the context")
	}
}

func TestUserContextMalformed(t *testing.T) {
	e := Entry{AdditionalContext: "{not json"}
	if got := e.UserContext(); len(got) != 0 {
		t.Errorf("got %v, want empty map for malformed context", got)
	}
}

func TestAppDisplayName(t *testing.T) {
	tests := []struct {
		bundle string
		want   string
	}{
		{"com.tinyspeck.slackmacgap", "Slack"},
		{"md.obsidian", "Obsidian"},
		{"", "Unknown"},
		{"com.acme.unheard-of", "com.acme.unheard-of"},
	}
	for _, tt := range tests {
		if got := AppDisplayName(tt.bundle); got != tt.want {
			t.Errorf("AppDisplayName(%q) = %q, want %q", tt.bundle, got, tt.want)
		}
	}
}

func TestResolveAppFilter(t *testing.T) {
	if got := ResolveAppFilter("Slack"); got != "com.tinyspeck.slackmacgap" {
		t.Errorf("ResolveAppFilter(Slack) = %q", got)
	}
	if got := ResolveAppFilter("com.tinyspeck.slackmacgap"); got != "com.tinyspeck.slackmacgap" {
		t.Errorf("bundle ids must pass through, got %q", got)
	}
	if got := ResolveAppFilter("slack"); got != "com.tinyspeck.slackmacgap" {
		t.Errorf("name matching must be case-insensitive, got %q", got)
	}
}
