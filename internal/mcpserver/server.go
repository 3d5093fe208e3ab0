// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Infinity Spark economy tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/infinity/internal/economy"
)

// Server wraps the MCP server with Infinity Spark tools.
type Server struct {
	mcp *server.MCPServer
	svc *economy.Service
}

// New creates a new MCP server with all economy tools registered.
func New(svc *economy.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Infinity Spark",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_worlds",
		mcp.WithDescription("List every world in the registry with id, title, owner, value, and listing state."),
		mcp.WithString("owner", mcp.Description("Optional wallet address to filter by owner")),
	), s.listWorlds)

	s.mcp.AddTool(mcp.NewTool("read_world",
		mcp.WithDescription("Read the full record of a world: content, pages, tools, collaborators."),
		mcp.WithString("id", mcp.Required(), mcp.Description("World id (e.g. site-...)")),
	), s.readWorld)

	s.mcp.AddTool(mcp.NewTool("search_worlds",
		mcp.WithDescription("Full-text search over world titles, descriptions, and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchWorlds)

	s.mcp.AddTool(mcp.NewTool("create_world",
		mcp.WithDescription("Generate a new world from a natural-language query and mint its token. "+
			"Read the market rules first via the get_market_rules tool or the "+
			"infinity://market-rules resource."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What the world should be about")),
	), s.createWorld)

	s.mcp.AddTool(mcp.NewTool("wallet_balance",
		mcp.WithDescription("Show the session wallet: address, portfolio balance, spendable infinity, owned tokens."),
	), s.walletBalance)

	s.mcp.AddTool(mcp.NewTool("market_listings",
		mcp.WithDescription("List every world currently for sale with its asking price."),
	), s.marketListings)

	s.mcp.AddTool(mcp.NewTool("transactions",
		mcp.WithDescription("Show the transaction ledger, newest last."),
	), s.transactions)

	s.mcp.AddTool(mcp.NewTool("get_market_rules",
		mcp.WithDescription("Returns the canonical Infinity Spark market rules. "+
			"Call this before creating worlds or reasoning about trades."),
	), s.getMarketRules)

	// Resource: market rules.
	s.mcp.AddResource(
		mcp.NewResource("infinity://market-rules", "Market Rules",
			mcp.WithResourceDescription("Canonical rules of the Infinity Spark world economy."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarketRulesResource,
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

type worldLine struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	Value     int64  `json:"value"`
	Listed    bool   `json:"listed"`
	SalePrice int64  `json:"salePrice,omitempty"`
}

func (s *Server) listWorlds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner := ""
	if v, err := req.RequireString("owner"); err == nil {
		owner = v
	}

	sites, err := s.svc.Websites(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []worldLine
	for _, site := range sites {
		if owner != "" && site.OwnerWallet != owner {
			continue
		}
		lines = append(lines, worldLine{
			ID:        site.ID,
			Title:     site.Title,
			Owner:     site.OwnerWallet,
			Value:     site.Value,
			Listed:    site.IsListedForSale,
			SalePrice: site.SalePrice,
		})
	}
	out, _ := json.MarshalIndent(lines, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readWorld(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	site, err := s.svc.Website(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(site, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchWorlds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchWorlds(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createWorld(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	site, err := s.svc.CreateWebsite(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s, value %d)", site.ID, site.Title, site.Value)), nil
}

func (s *Server) walletBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := s.svc.EnsureWallet(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "address: %s\n", w.Address)
	fmt.Fprintf(&b, "infinity: %d\n", w.Spendable())
	fmt.Fprintf(&b, "portfolio: %d\n", w.Balance)
	fmt.Fprintf(&b, "tokens: %d\n", len(w.Tokens))
	for _, t := range w.Tokens {
		fmt.Fprintf(&b, "  %s  %s  %d\n", t.ID, t.Metadata.Title, t.Value)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) marketListings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sites, err := s.svc.Websites(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var listed []worldLine
	for _, site := range sites {
		if !site.IsListedForSale {
			continue
		}
		listed = append(listed, worldLine{
			ID:        site.ID,
			Title:     site.Title,
			Owner:     site.OwnerWallet,
			Value:     site.Value,
			Listed:    true,
			SalePrice: site.SalePrice,
		})
	}
	if len(listed) == 0 {
		return mcp.NewToolResultText("no worlds listed for sale"), nil
	}
	out, _ := json.MarshalIndent(listed, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) transactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txs, err := s.svc.Transactions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(txs) == 0 {
		return mcp.NewToolResultText("no transactions"), nil
	}
	var b strings.Builder
	for _, tx := range txs {
		fmt.Fprintf(&b, "%s  %s  %d  %s -> %s\n", tx.ID, tx.Type, tx.Amount, orDash(tx.From), orDash(tx.To))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (s *Server) getMarketRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarketRules), nil
}

func (s *Server) readMarketRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "infinity://market-rules",
			MIMEType: "text/markdown",
			Text:     MarketRules,
		},
	}, nil
}
