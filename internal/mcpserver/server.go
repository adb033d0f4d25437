// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes postdex tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/postservice"
)

// HeaderFormatURI is the resource URI of HeaderFormatContract.
const HeaderFormatURI = "postdex://header-format"

// Server wraps the MCP server with postdex tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all postdex tools registered.
func New(svc *postservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Postdex",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List every document path in the tree, one per line."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the raw content of a document, header included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. notes/go.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("refresh_index",
		mcp.WithDescription("Fill missing header fields in every document and rebuild the index. "+
			"With dry_run the changes are only reported."),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would change without writing anything")),
	), s.refreshIndex)

	s.mcp.AddTool(mcp.NewTool("get_index",
		mcp.WithDescription("Return the persisted index JSON."),
	), s.getIndex)

	s.mcp.AddTool(mcp.NewTool("get_header_format",
		mcp.WithDescription("Returns the document header format and the defaults refresh fills in. "+
			"Call this before writing documents."),
	), s.getHeaderFormat)

	s.mcp.AddResource(
		mcp.NewResource(HeaderFormatURI, "Header Format",
			mcp.WithResourceDescription("Document header format and defaults."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readHeaderFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type refreshOutput struct {
	DryRun   bool     `json:"dry_run"`
	Count    int      `json:"count"`
	Changed  []string `json:"changed"`
	Failures []string `json:"failures"`
	Checksum string   `json:"checksum"`
}

func (s *Server) listPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.svc.ListFiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Name
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.ReadPost(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(post.Content)), nil
}

func (s *Server) refreshIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	preview := req.GetBool("dry_run", false)

	res, err := s.svc.Refresh(ctx, preview)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := refreshOutput{
		DryRun:   res.Preview,
		Count:    len(res.Summaries),
		Changed:  res.Changed,
		Failures: make([]string, 0, len(res.Failures)),
		Checksum: res.Checksum,
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, f.Path+": "+f.Error)
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.svc.IndexJSON(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("index not built yet, call refresh_index first"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getHeaderFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(HeaderFormatContract), nil
}

func (s *Server) readHeaderFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HeaderFormatURI,
			MIMEType: "text/markdown",
			Text:     HeaderFormatContract,
		},
	}, nil
}
