// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Laguz sync tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/syncer"
)

// Server wraps the MCP server with Laguz tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	sync  *syncer.Service
}

// New creates a new MCP server with all Laguz tools registered.
func New(store storage.Provider, sync *syncer.Service) *Server {
	s := &Server{store: store, sync: sync}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_bookmarks",
		mcp.WithDescription("Run a full bookmark sync pass and return its report "+
			"(fetched/created/updated/skipped/errors counts)."),
	), s.syncBookmarks)

	s.mcp.AddTool(mcp.NewTool("sync_status",
		mcp.WithDescription("Report whether a sync pass is running and the last finished report."),
	), s.syncStatus)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List synced bookmark notes, optionally restricted to a vault folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a synced bookmark note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. Inbox/article.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("get_template_contract",
		mcp.WithDescription("Returns the note template language contract. "+
			"Call this before suggesting or editing note templates."),
	), s.getTemplateContract)

	// Resource: template language contract.
	s.mcp.AddResource(
		mcp.NewResource("laguz://template-language", "Template Language Contract",
			mcp.WithResourceDescription("The template mini-language accepted in note and file-name templates."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTemplateContractResource,
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

func (s *Server) syncBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.sync.Run(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrSyncRunning) {
			return mcp.NewToolResultError("a sync pass is already running"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) syncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.sync.Status(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getTemplateContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TemplateLanguageContract), nil
}

func (s *Server) readTemplateContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://template-language",
			MIMEType: "text/markdown",
			Text:     TemplateLanguageContract,
		},
	}, nil
}
