// Package resolver decides which single catalog item, if any, should be
// surfaced for a query. Two similarity searches are attempted at most:
// one over the AI-derived keywords, one over the raw query text. No rank
// fusion; the single candidate per stage is gated by a fixed score
// threshold.
package resolver

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"go.uber.org/zap"
)

const (
	// topK: only the single best hit per stage is ever considered.
	topK = 1

	// SimilarityThreshold is the acceptance cutoff for surfacing a
	// product card. Scores come from cosine similarity in [0,1].
	SimilarityThreshold = 0.70
)

// Degraded-search notes appended to the advice text.
const (
	NoteSearchIssue = "\n(Note: There was an issue searching for products.)"
	NoteNearMatch   = "\n(I found something similar, but wasn't sure if it was the best match. Could you be more specific?)"
	NoteNoMatch     = "\n(I couldn't find specific products matching your request in the catalog right now.)"
)

// SearchProvider returns the ranked nearest catalog entries for raw text.
type SearchProvider interface {
	Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error)
}

// Resolver runs the two-stage relevance resolution over an injected
// search provider. Stateless; safe for concurrent use.
type Resolver struct {
	provider SearchProvider
}

func New(provider SearchProvider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve picks the best catalog match for the query, or none.
//
// Stage A searches the keyword phrase when it is non-blank. Stage B
// searches the raw query, but only when Stage A did not already produce
// a hit at or above the threshold. A Stage B hit must both clear the
// threshold and strictly beat the Stage A score to take over; on equal
// scores the keyword-derived hit wins. The final winner is surfaced only
// if its score clears the threshold; a sub-threshold winner is retained
// for reporting but never selected.
//
// Provider errors are absorbed per call: the failing stage yields no
// candidate and a note, and resolution continues.
func (r *Resolver) Resolve(ctx context.Context, rawQuery, searchKeywords string) model.ResolutionOutcome {
	rawQuery = strings.TrimSpace(rawQuery)
	searchKeywords = strings.TrimSpace(searchKeywords)

	searchFailed := false
	topOne := func(text string) *model.SearchHit {
		if text == "" {
			return nil
		}
		hits, err := r.provider.Search(ctx, text, topK)
		if err != nil {
			logger.Error("Product search failed", zap.Error(err))
			searchFailed = true
			return nil
		}
		if len(hits) == 0 {
			return nil
		}
		return &hits[0]
	}

	var winner *model.SearchHit
	stage := "none"

	if searchKeywords != "" {
		winner = topOne(searchKeywords)
		if winner != nil {
			stage = "keywords"
		}
	}

	if winner == nil || winner.Score < SimilarityThreshold {
		direct := topOne(rawQuery)
		if direct != nil && direct.Score >= SimilarityThreshold {
			if winner == nil || direct.Score > winner.Score {
				winner = direct
				stage = "direct"
			}
		}
	}

	if winner != nil && winner.Entry != nil && winner.Score >= SimilarityThreshold {
		logger.Info("Product match selected",
			zap.String("stage", stage),
			zap.String("productId", winner.CatalogID),
			zap.Float64("score", winner.Score))
		// Success discards any error note from the losing stage.
		return model.ResolutionOutcome{Selected: winner.Entry}
	}

	outcome := model.ResolutionOutcome{NearMatch: winner}
	switch {
	case searchFailed:
		outcome.Note = NoteSearchIssue
	case winner != nil:
		logger.Info("Best match below threshold",
			zap.String("stage", stage),
			zap.String("productId", winner.CatalogID),
			zap.Float64("score", winner.Score))
		outcome.Note = NoteNearMatch
	default:
		outcome.Note = NoteNoMatch
	}
	return outcome
}
