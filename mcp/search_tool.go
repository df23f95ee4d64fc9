// Package mcp exposes the catalog search as a Model Context Protocol
// tool so external agents can query the Planet Beauty catalog.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/agent-boot/schema"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"go.uber.org/zap"
)

// toolTopK: agents get a short ranked list rather than the single-card
// policy the chat endpoint applies.
const toolTopK = 5

// ProductSearcher is the similarity search the tool runs over.
type ProductSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error)
}

type SearchTool struct {
	catalog ProductSearcher
}

func NewSearchTool(catalog ProductSearcher) *SearchTool {
	return &SearchTool{catalog: catalog}
}

// Run streams the top catalog hits for the query as tool result chunks.
func (s *SearchTool) Run(ctx context.Context, query string) <-chan *schema.ToolResultChunk {
	out := make(chan *schema.ToolResultChunk, toolTopK)

	go func() {
		defer close(out)

		hits, err := s.catalog.Search(ctx, query, toolTopK)
		if err != nil {
			logger.Error("Catalog search failed for tool call", zap.Error(err))
			out <- &schema.ToolResultChunk{
				Error: err.Error(),
			}
			return
		}

		for _, hit := range hits {
			if hit.Entry == nil {
				continue
			}
			out <- &schema.ToolResultChunk{
				Id:          hit.Entry.ID,
				Title:       hit.Entry.Title,
				Attribution: hit.Entry.ProductURL,
				Sentences:   describeEntry(hit.Entry, hit.Score),
			}
		}
	}()

	return out
}

func describeEntry(entry *model.CatalogEntry, score float64) []string {
	sentences := []string{
		fmt.Sprintf("Price: %s.", entry.Price),
		fmt.Sprintf("Similarity score: %.4f.", score),
	}
	if entry.Vendor != "" {
		sentences = append(sentences, fmt.Sprintf("Brand: %s.", entry.Vendor))
	}
	if entry.ProductType != "" {
		sentences = append(sentences, fmt.Sprintf("Type: %s.", entry.ProductType))
	}
	if len(entry.Tags) > 0 {
		sentences = append(sentences, fmt.Sprintf("Tags: %s.", strings.Join(entry.Tags, ", ")))
	}
	return sentences
}
