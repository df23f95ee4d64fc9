package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/agent-boot/agentboot"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchProductsInput is the tool argument schema.
type SearchProductsInput struct {
	Query string `json:"query" jsonschema:"the shopper's product request in natural language"`
}

// NewServer builds an MCP server exposing search_products. Tool results
// are rendered to markdown, optionally summarized by the renderer's
// model when summarize is set.
func NewServer(tool *SearchTool, renderer *agentboot.ToolResultRenderer, summarize bool) *sdk.Server {
	srv := sdk.NewServer(&sdk.Implementation{
		Name:    "bella-catalog",
		Version: "1.0.0",
	}, nil)

	sdk.AddTool(srv, &sdk.Tool{
		Name:        "search_products",
		Description: "Search the Planet Beauty product catalog by natural-language query and return the closest matching products with price and link.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, in SearchProductsInput) (*sdk.CallToolResult, any, error) {
		rendered, err := renderer.Render(ctx, in.Query, "", tool.Run(ctx, in.Query), summarize)
		if err != nil {
			return nil, nil, err
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: strings.Join(rendered, "\n")}},
		}, nil, nil
	})

	return srv
}

// NewHTTPHandler mounts the server over the streamable HTTP transport.
func NewHTTPHandler(srv *sdk.Server) http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return srv
	}, nil)
}
