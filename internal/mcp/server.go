// Package mcp exposes the dispatcher operations as MCP tools over a stdio
// JSON-RPC transport. Every tool call decodes into a typed request, runs one
// dispatch, and returns the result as JSON text; errors come back as tool
// errors, never protocol failures.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/errs"
	"github.com/jwulff/flowscribe/internal/version"
)

// Server wraps an MCP server around a dispatcher.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *dispatch.Dispatcher
	log        zerolog.Logger
}

// NewServer registers the tool set over the given dispatcher. The logger must
// write to stderr: stdout carries the protocol stream.
func NewServer(d *dispatch.Dispatcher, log zerolog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"flowscribe",
			version.Version,
			server.WithToolCapabilities(false),
		),
		dispatcher: d,
		log:        log,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving the stdio transport until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	dateParams := []mcp.ToolOption{
		mcp.WithString("since", mcp.Description("Start of the date range: relative (1h, 2d, 3w, 1m, 1y) or absolute (2024-01-01, 2024-01-01 10:30)")),
		mcp.WithString("until", mcp.Description("End of the date range, same formats as since")),
		mcp.WithString("app", mcp.Description("Filter by app name (e.g. Slack) or bundle identifier (e.g. com.tinyspeck.slackmacgap)")),
	}

	s.add(mcp.NewTool("get_recent_transcripts",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get the most recent transcription entries, newest first. Defaults to the last 24 hours."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20, max 1000)")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived entries")),
		}, dateParams...)...,
	), s.recentHandler())

	s.add(mcp.NewTool("list_transcripts",
		append([]mcp.ToolOption{
			mcp.WithDescription("List transcription entries with filters, newest first."),
			mcp.WithString("status", mcp.Description("Filter by entry status (e.g. formatted, empty, dismissed)")),
			mcp.WithString("conversation_id", mcp.Description("Only entries in this conversation")),
			mcp.WithNumber("min_words", mcp.Description("Only entries with at least this many words")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20, max 1000)")),
			mcp.WithNumber("offset", mcp.Description("Number of entries to skip, for paging")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived entries")),
		}, dateParams...)...,
	), s.handler(dispatch.OpList))

	s.add(mcp.NewTool("search_transcripts",
		append([]mcp.ToolOption{
			mcp.WithDescription("Full-text search over transcript text, newest first."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for (case-insensitive substring)")),
			mcp.WithBoolean("all_fields", mcp.Description("Also match the raw and formatted text versions, not just the display text")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of matches (default 50, max 1000)")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived entries")),
		}, dateParams...)...,
	), s.handler(dispatch.OpSearch))

	s.add(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get one transcript by its identifier. A unique prefix of the identifier is accepted."),
		mcp.WithString("transcript_id", mcp.Required(), mcp.Description("Full identifier or unique prefix")),
	), s.handler(dispatch.OpShow))

	s.add(mcp.NewTool("get_conversations",
		append([]mcp.ToolOption{
			mcp.WithDescription("List conversation threads, most recently active first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of conversations (default 10)")),
			mcp.WithBoolean("include_singletons", mcp.Description("Include single-entry conversations")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived entries")),
		}, dateParams...)...,
	), s.handler(dispatch.OpConversations))

	s.add(mcp.NewTool("get_conversation",
		mcp.WithDescription("Get one conversation with all of its entries."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithString("format", mcp.Description("Set to markdown for a rendered transcript"),
			mcp.Enum("json", "markdown")),
	), s.handler(dispatch.OpConversation))

	s.add(mcp.NewTool("get_app_statistics",
		append([]mcp.ToolOption{
			mcp.WithDescription("Per-application usage breakdown: entry counts, words, duration, latency. Whole-database when no filter is given."),
			mcp.WithString("sort_by", mcp.Description("Sort key"),
				mcp.Enum("entries", "words", "duration", "latency", "last_used")),
			mcp.WithNumber("min_entries", mcp.Description("Only apps with at least this many entries")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of apps (default 20)")),
		}, dateParams...)...,
	), s.handler(dispatch.OpApps))

	s.add(mcp.NewTool("get_database_statistics",
		append([]mcp.ToolOption{
			mcp.WithDescription("Aggregate statistics: whole-database when no filter is given, otherwise over the filtered entries."),
		}, dateParams...)...,
	), s.handler(dispatch.OpStats))

	s.add(mcp.NewTool("export_transcripts",
		append([]mcp.ToolOption{
			mcp.WithDescription("Export transcripts as json, csv, markdown, or plain text."),
			mcp.WithString("format", mcp.Description("Export format (default json)"),
				mcp.Enum("json", "csv", "markdown", "text")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records (default: all)")),
			mcp.WithBoolean("group_by_conversation", mcp.Description("Export conversations instead of individual entries")),
		}, dateParams...)...,
	), s.handler(dispatch.OpExport))

	s.add(mcp.NewTool("get_dictionary_entries",
		mcp.WithDescription("List the custom dictionary entries, most used first."),
	), s.handler(dispatch.OpDictionary))
}

func (s *Server) add(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, h)
}

// handler adapts one dispatcher operation to a tool call.
func (s *Server) handler(op dispatch.Op) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.run(op, req.GetArguments())
	}
}

// recentHandler is the list operation with a one-day default window.
func (s *Server) recentHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		if v, ok := args["since"]; !ok || v == "" {
			args["since"] = "1d"
		}
		return s.run(dispatch.OpList, args)
	}
}

func (s *Server) run(op dispatch.Op, args map[string]any) (*mcp.CallToolResult, error) {
	request, err := dispatch.ParseRequest(string(op), args)
	if err != nil {
		return s.toolError(op, err), nil
	}
	result, err := s.dispatcher.Dispatch(request)
	if err != nil {
		return s.toolError(op, err), nil
	}
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", op, err)
	}
	s.log.Debug().Str("op", string(op)).Int("bytes", len(payload)).Msg("tool call served")
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) toolError(op dispatch.Op, err error) *mcp.CallToolResult {
	kind := errs.KindOf(err)
	s.log.Warn().Str("op", string(op)).Str("kind", string(kind)).Err(err).Msg("tool call failed")
	return mcp.NewToolResultError(err.Error())
}
