// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes nbtodo tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nbtodo/nbtodo/internal/apperr"
	"github.com/nbtodo/nbtodo/internal/todoservice"
)

// Server wraps the MCP server with nbtodo tools.
type Server struct {
	mcp *server.MCPServer
	svc *todoservice.Service
}

// New creates a new MCP server with all nbtodo tools registered.
func New(svc *todoservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"nbtodo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("List all todos: manual items first, then items mined "+
			"from notebook '# TODO:' markers. See the nbtodo://item-format resource "+
			"for the item shape and id scheme."),
		mcp.WithBoolean("include_notebooks", mcp.Description("Include notebook-mined items (default true)")),
	), s.listTodos)

	s.mcp.AddTool(mcp.NewTool("add_todo",
		mcp.WithDescription("Add a manual todo item. The server assigns its id."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Todo text")),
	), s.addTodo)

	s.mcp.AddTool(mcp.NewTool("complete_todo",
		mcp.WithDescription("Mark a manual todo as done (or back to not done). "+
			"Notebook-mined todos cannot be completed here; edit the notebook instead."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
		mcp.WithBoolean("done", mcp.Description("Done state to set (default true)")),
	), s.completeTodo)

	s.mcp.AddTool(mcp.NewTool("remove_todo",
		mcp.WithDescription("Delete a manual todo item."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
	), s.removeTodo)

	// Resource: item format contract.
	s.mcp.AddResource(
		mcp.NewResource("nbtodo://item-format", "Todo Item Format",
			mcp.WithResourceDescription("Shape and id scheme of the todo items returned by the tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readItemFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) listTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeNotebooks := true
	if v, ok := req.GetArguments()["include_notebooks"].(bool); ok {
		includeNotebooks = v
	}

	items := s.svc.Items(ctx, includeNotebooks)
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return mcp.NewToolResultError("text must not be empty"), nil
	}

	item, err := s.svc.AddItem(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", item.ID)), nil
}

func (s *Server) completeTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	done := true
	if v, ok := req.GetArguments()["done"].(bool); ok {
		done = v
	}

	item, err := s.svc.UpdateItem(ctx, id, todoservice.ItemPatch{Done: &done})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no manual todo with id %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	state := "done"
	if !item.Done {
		state = "not done"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", state, item.ID)), nil
}

func (s *Server) removeTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.RemoveItem(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no manual todo with id %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) readItemFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "nbtodo://item-format",
			MIMEType: "text/markdown",
			Text:     ItemFormatContract,
		},
	}, nil
}
