// Package mcpserver exposes the search service as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
)

// Resource URIs.
const (
	BooksURI = "juniper://books"
	StatsURI = "juniper://stats"
)

// Server wraps an MCP server bound to one service.
type Server struct {
	svc *service.Service
	mcp *server.MCPServer
}

// New registers the tools, resources and prompts.
func New(svc *service.Service, version string) *Server {
	s := &Server{
		svc: svc,
		mcp: server.NewMCPServer(
			"Juniper Search",
			version,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithPromptCapabilities(true),
		),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves on stdin/stdout until the input closes.
// Logs must not go to stdout while this runs.
func (s *Server) ServeStdio() error {
	logging.ServerStartup("mcp", "stdio", 0)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	scopes := make([]string, len(search.Scopes))
	for i, sc := range search.Scopes {
		scopes[i] = string(sc)
	}

	s.mcp.AddTool(
		mcp.NewTool("search_verses",
			mcp.WithDescription("Full-text search over the loaded Bible corpus. Returns ranked verses with highlighted snippets."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Words or phrase to search for"),
			),
			mcp.WithString("scope",
				mcp.Description("Book group to search"),
				mcp.Enum(scopes...),
				mcp.DefaultString(string(search.ScopeAll)),
			),
			mcp.WithString("book",
				mcp.Description("Restrict to one book (name, id or alias, e.g. 'Jn')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum results to return"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Results to skip"),
			),
		),
		s.handleSearch,
	)

	s.mcp.AddTool(
		mcp.NewTool("lookup_passage",
			mcp.WithDescription("Read the verses of a reference such as 'John 3:16' or 'Gen 1:1-5'."),
			mcp.WithString("reference",
				mcp.Required(),
				mcp.Description("Bible reference"),
			),
		),
		s.handlePassage,
	)

	s.mcp.AddTool(
		mcp.NewTool("parse_references",
			mcp.WithDescription("Parse one or more references separated by ';' or ','. Returns normalized references and the parts that could not be parsed."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Reference text"),
			),
		),
		s.handleParseReferences,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_books",
			mcp.WithDescription("List known books with their ids, groups and aliases."),
			mcp.WithString("group",
				mcp.Description("Optional book group filter"),
				mcp.Enum(scopes[1:]...),
			),
		),
		s.handleBooks,
	)

	s.mcp.AddTool(
		mcp.NewTool("index_stats",
			mcp.WithDescription("Report whether the index is built and how many verses and books it holds."),
		),
		s.handleStats,
	)

	s.mcp.AddTool(
		mcp.NewTool("rebuild_index",
			mcp.WithDescription("Reload the corpus and rebuild the search index."),
		),
		s.handleRebuild,
	)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource(BooksURI, "Book list",
			mcp.WithResourceDescription("Every known book with aliases"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(StatsURI, "Index statistics",
			mcp.WithResourceDescription("Current index statistics"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResource,
	)
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(
		mcp.NewPrompt("study_passage",
			mcp.WithPromptDescription("Study a passage: its text, context and cross references"),
			mcp.WithArgument("reference",
				mcp.ArgumentDescription("Bible reference, e.g. 'John 1:1-5'"),
				mcp.RequiredArgument(),
			),
		),
		s.handleStudyPrompt,
	)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	scope, err := search.ParseScope(req.GetString("scope", ""))
	if err != nil {
		return toolError(err), nil
	}
	opts := search.Options{
		Scope:  scope,
		Book:   req.GetString("book", ""),
		Limit:  req.GetInt("limit", 0),
		Offset: req.GetInt("offset", 0),
	}

	resp, err := s.svc.Search(ctx, query, opts)
	if err != nil {
		return toolError(err), nil
	}
	if resp.Total == 0 {
		return mcp.NewToolResultText("No results found for: " + query), nil
	}
	return jsonResult(resp)
}

func (s *Server) handlePassage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("reference", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("reference is required"), nil
	}
	p, err := s.svc.Passage(ctx, text)
	if err != nil {
		return toolError(err), nil
	}
	if len(p.Verses) == 0 {
		return mcp.NewToolResultText("No verses in the corpus for " + p.Formatted), nil
	}
	return mcp.NewToolResultText(formatPassage(p)), nil
}

func (s *Server) handleParseReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	return jsonResult(s.svc.ParseReferences(text))
}

func (s *Server) handleBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group books.Group
	if raw := req.GetString("group", ""); raw != "" {
		g, ok := books.ParseGroup(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown group %q", raw)), nil
		}
		group = g
	}
	return jsonResult(s.svc.Books(group))
}

func (s *Server) handleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Stats())
}

func (s *Server) handleRebuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Rebuild(ctx); err != nil {
		return toolError(err), nil
	}
	return jsonResult(s.svc.Stats())
}

func (s *Server) handleResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var v any
	switch req.Params.URI {
	case BooksURI:
		v = s.svc.Books("")
	case StatsURI:
		v = s.svc.Stats()
	default:
		return nil, apperrors.NewNotFound("resource", req.Params.URI)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleStudyPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	reference := req.Params.Arguments["reference"]
	if strings.TrimSpace(reference) == "" {
		return promptResult("Study a passage", "Please provide a reference to study."), nil
	}
	p, err := s.svc.Passage(ctx, reference)
	if err != nil {
		return promptResult("Study a passage", fmt.Sprintf("Could not read %s: %v", reference, err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is %s:\n\n%s\n\n", p.Formatted, formatPassage(p))
	b.WriteString("Explain what this passage says, where it sits in its book, ")
	b.WriteString("and suggest related passages. Use the search_verses tool to find them.")
	return promptResult("Study "+p.Formatted, b.String()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}
}

func formatPassage(p *service.Passage) string {
	var b strings.Builder
	for _, v := range p.Verses {
		fmt.Fprintf(&b, "%s %d:%d %s\n", v.Book, v.Chapter, v.Verse, v.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports err to the client. Corpus and internal failures are
// logged and replaced by a generic message.
func toolError(err error) *mcp.CallToolResult {
	switch kind := apperrors.Kind(err); kind {
	case apperrors.KindCorpusUnavailable:
		logging.Error("mcp tool failed", "kind", kind, "error", err)
		return mcp.NewToolResultError("corpus unavailable")
	case apperrors.KindInternal:
		logging.Error("mcp tool failed", "kind", kind, "error", err)
		return mcp.NewToolResultError("internal error")
	}
	return mcp.NewToolResultError(err.Error())
}
