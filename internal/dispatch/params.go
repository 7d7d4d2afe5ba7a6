package dispatch

import (
	"fmt"

	"github.com/jwulff/flowscribe/internal/errs"
)

// ParseRequest builds a typed request from an operation name and loosely
// typed parameters, as delivered by a JSON transport. Unrecognized names fail
// with UnknownOperation, malformed values with InvalidParameters; nothing is
// executed until the whole request decodes.
func ParseRequest(name string, params map[string]any) (Request, error) {
	p := paramReader{params: params}
	var req Request

	switch Op(name) {
	case OpList:
		req = ListRequest{
			Since:           p.str("since"),
			Until:           p.str("until"),
			App:             p.str("app"),
			Status:          p.str("status"),
			ConversationID:  p.str("conversation_id"),
			MinWords:        p.num("min_words"),
			Limit:           p.num("limit"),
			Offset:          p.num("offset"),
			IncludeArchived: p.boolean("include_archived"),
		}
	case OpSearch:
		req = SearchRequest{
			Query:           p.str("query"),
			Since:           p.str("since"),
			Until:           p.str("until"),
			App:             p.str("app"),
			Limit:           p.num("limit"),
			AllFields:       p.boolean("all_fields"),
			IncludeArchived: p.boolean("include_archived"),
		}
	case OpShow:
		req = ShowRequest{ID: p.str("transcript_id")}
	case OpStats:
		req = StatsRequest{
			Since: p.str("since"),
			Until: p.str("until"),
			App:   p.str("app"),
		}
	case OpApps:
		req = AppsRequest{
			Since:      p.str("since"),
			Until:      p.str("until"),
			App:        p.str("app"),
			SortBy:     p.str("sort_by"),
			MinEntries: p.num("min_entries"),
			Limit:      p.num("limit"),
		}
	case OpExport:
		req = ExportRequest{
			Format:              p.str("format"),
			Since:               p.str("since"),
			Until:               p.str("until"),
			App:                 p.str("app"),
			Limit:               p.num("limit"),
			GroupByConversation: p.boolean("group_by_conversation"),
		}
	case OpCollect:
		req = CollectRequest{
			Since:        p.str("since"),
			Until:        p.str("until"),
			App:          p.str("app"),
			Form:         p.str("format"),
			MinWords:     p.num("min_words"),
			ExcludeShort: p.boolean("exclude_short"),
			ExcludeApps:  p.strs("exclude_apps"),
		}
	case OpConversations:
		req = ConversationsRequest{
			Since:           p.str("since"),
			Until:           p.str("until"),
			App:             p.str("app"),
			Limit:           p.num("limit"),
			IncludeSingles:  p.boolean("include_singletons"),
			IncludeArchived: p.boolean("include_archived"),
		}
	case OpConversation:
		req = ConversationRequest{
			ID:       p.str("conversation_id"),
			Markdown: p.str("format") == "markdown",
		}
	case OpDictionary:
		req = DictionaryRequest{}
	default:
		return nil, errs.Newf(errs.UnknownOperation, "unknown operation %q", name)
	}

	if p.err != nil {
		return nil, p.err
	}
	return req, nil
}

// paramReader decodes map parameters, remembering the first type mismatch.
type paramReader struct {
	params map[string]any
	err    error
}

func (p *paramReader) fail(key string, value any, want string) {
	if p.err == nil {
		p.err = errs.Newf(errs.InvalidParameters, "parameter %q must be a %s, got %T", key, want, value)
	}
}

func (p *paramReader) str(key string) string {
	v, ok := p.params[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.fail(key, v, "string")
		return ""
	}
	return s
}

func (p *paramReader) num(key string) int {
	v, ok := p.params[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			p.fail(key, v, "whole number")
			return 0
		}
		return int(n)
	case int:
		return n
	default:
		p.fail(key, v, "number")
		return 0
	}
}

func (p *paramReader) boolean(key string) bool {
	v, ok := p.params[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		p.fail(key, v, "boolean")
		return false
	}
	return b
}

func (p *paramReader) strs(key string) []string {
	v, ok := p.params[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				p.fail(key, fmt.Sprintf("%v", item), "list of strings")
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		p.fail(key, v, "list of strings")
		return nil
	}
}
