package transcript

import "strings"

// bundleNames maps macOS bundle identifiers to display names for the apps
// that commonly appear in dictation history.
var bundleNames = map[string]string{
	"com.tinyspeck.slackmacgap": "Slack",
	"md.obsidian":               "Obsidian",
	"com.apple.MobileSMS":       "Messages",
	"com.microsoft.VSCode":      "VS Code",
	"com.google.Chrome":         "Chrome",
	"com.electron.wispr-flow":   "Wispr Flow",
	"com.openai.chat":           "ChatGPT",
	"com.apple.Safari":          "Safari",
	"com.apple.mail":            "Mail",
	"com.apple.Notes":           "Notes",
	"com.apple.TextEdit":        "TextEdit",
}

var nameBundles = map[string]string{
	"slack":      "com.tinyspeck.slackmacgap",
	"obsidian":   "md.obsidian",
	"messages":   "com.apple.MobileSMS",
	"vscode":     "com.microsoft.VSCode",
	"vs code":    "com.microsoft.VSCode",
	"chrome":     "com.google.Chrome",
	"wispr":      "com.electron.wispr-flow",
	"wispr flow": "com.electron.wispr-flow",
	"chatgpt":    "com.openai.chat",
	"safari":     "com.apple.Safari",
	"mail":       "com.apple.mail",
	"notes":      "com.apple.Notes",
}

// AppName returns the human-readable name for the entry's source app.
func (e Entry) AppName() string {
	return AppDisplayName(e.App)
}

// AppDisplayName maps a bundle identifier to a display name. Unknown bundle
// IDs pass through unchanged; an empty app is "Unknown".
func AppDisplayName(bundleID string) string {
	if bundleID == "" {
		return "Unknown"
	}
	if name, ok := bundleNames[bundleID]; ok {
		return name
	}
	return bundleID
}

// ResolveAppFilter turns a user-supplied app value into a bundle identifier.
// Values containing a dot are assumed to already be bundle IDs.
func ResolveAppFilter(app string) string {
	if app == "" {
		return ""
	}
	if strings.Contains(app, ".") {
		return app
	}
	if bundle, ok := nameBundles[strings.ToLower(app)]; ok {
		return bundle
	}
	return app
}
