// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the flashcard deck to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kartica/internal/deckservice"
)

const sourceFormatURI = "kartica://source-format"

// Server wraps the MCP server with deck tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all deck tools registered.
func New(svc *deckservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Kartica",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("current_card",
		mcp.WithDescription("Show the deck snapshot: current card, position, filters and categories."),
	), s.currentCard)

	s.mcp.AddTool(mcp.NewTool("next_card",
		mcp.WithDescription("Move to the next card. Wraps to the first card after the last."),
	), s.nextCard)

	s.mcp.AddTool(mcp.NewTool("previous_card",
		mcp.WithDescription("Move to the previous card. Wraps to the last card before the first."),
	), s.previousCard)

	s.mcp.AddTool(mcp.NewTool("flip_card",
		mcp.WithDescription("Flip the current card between the English and Croatian side."),
	), s.flipCard)

	s.mcp.AddTool(mcp.NewTool("shuffle_deck",
		mcp.WithDescription("Shuffle the cards in the current view and return to the first card."),
	), s.shuffleDeck)

	s.mcp.AddTool(mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Add a card to favorites, or remove it if it is already a favorite."),
		mcp.WithString("id", mcp.Description("Card ID. Defaults to the current card.")),
	), s.toggleFavorite)

	s.mcp.AddTool(mcp.NewTool("set_category",
		mcp.WithDescription("Restrict the deck to one category. Use \"All\" to clear the filter."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name from list_categories")),
	), s.setCategory)

	s.mcp.AddTool(mcp.NewTool("toggle_favorites_only",
		mcp.WithDescription("Switch between showing all cards and favorites only."),
	), s.toggleFavoritesOnly)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the selectable categories, \"All\" first."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_source_format",
		mcp.WithDescription("Returns the CSV format that custom card sources must follow."),
	), s.getSourceFormat)

	// Resource: card source format contract.
	s.mcp.AddResource(
		mcp.NewResource(sourceFormatURI, "Card Source Format",
			mcp.WithResourceDescription("CSV layout for custom cards."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSourceFormatResource,
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

func (s *Server) currentCard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.Snapshot(), nil)
}

func (s *Server) nextCard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.Next())
}

func (s *Server) previousCard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.Previous())
}

func (s *Server) flipCard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.Flip())
}

func (s *Server) shuffleDeck(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.Shuffle())
}

func (s *Server) toggleFavorite(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}
	return viewResult(s.svc.ToggleFavorite(id))
}

func (s *Server) setCategory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(s.svc.SetCategory(category))
}

func (s *Server) toggleFavoritesOnly(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.svc.ToggleFavoritesOnly())
}

func (s *Server) listCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSourceFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SourceFormatContract), nil
}

func (s *Server) readSourceFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sourceFormatURI,
			MIMEType: "text/markdown",
			Text:     SourceFormatContract,
		},
	}, nil
}

// viewResult renders a snapshot, or the service error as a tool error.
func viewResult(v deckservice.View, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
