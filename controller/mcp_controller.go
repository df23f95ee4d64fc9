package controller

import (
	"net/http"
	"os"

	"github.com/SaiNageswarS/agent-boot/agentboot"
	"github.com/SaiNageswarS/agent-boot/llm"
	"github.com/SaiNageswarS/go-api-boot/embed"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/planetbeauty/bella-shopping-assistant/mcp"
	"github.com/planetbeauty/bella-shopping-assistant/search"
)

// MCPController mounts the catalog search tool for MCP agent clients.
type MCPController struct {
	handler http.Handler
}

// ProvideMCPController builds the MCP server around the same catalog
// search provider the chat endpoint uses. Result summarization is
// optional and uses a small model.
func ProvideMCPController(mongo odm.MongoClient, embedder embed.Embedder) *MCPController {
	catalog := search.ProvideCatalogSearch(mongo, embedder, catalogTenant())
	tool := mcp.NewSearchTool(catalog)

	llmClient := llm.NewAnthropicClient("claude-3-5-haiku-20241022")
	renderer := agentboot.NewToolResultRenderer(agentboot.WithSummarizationModel(llmClient))

	summarize := os.Getenv("ENABLE_SEARCH_SUMMARIZATION") == "true"
	srv := mcp.NewServer(tool, renderer, summarize)

	return &MCPController{handler: mcp.NewHTTPHandler(srv)}
}

func (c *MCPController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/mcp",
			Method:  http.MethodPost,
			Handler: c.handler.ServeHTTP,
		},
		{
			Pattern: "/mcp",
			Method:  http.MethodGet,
			Handler: c.handler.ServeHTTP,
		},
		{
			Pattern: "/mcp",
			Method:  http.MethodDelete,
			Handler: c.handler.ServeHTTP,
		},
	}
}
