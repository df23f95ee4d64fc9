package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/planetbeauty/bella-shopping-assistant/model"
)

type stubResult struct {
	hits []model.SearchHit
	err  error
}

// stubProvider returns canned results keyed by query text and records
// every call it receives.
type stubProvider struct {
	results map[string]stubResult
	calls   []string
}

func (p *stubProvider) Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error) {
	p.calls = append(p.calls, query)
	r := p.results[query]
	return r.hits, r.err
}

func entry(id string) *model.CatalogEntry {
	return &model.CatalogEntry{
		ID:         id,
		Title:      "Product " + id,
		Price:      "19.99 USD",
		ProductURL: "https://shop.example.com/products/" + id,
	}
}

func hit(id string, score float64) model.SearchHit {
	return model.SearchHit{CatalogID: id, Score: score, Entry: entry(id)}
}

func TestResolve_KeywordHitAboveThresholdSkipsDirectSearch(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"hydrating serum keywords": {hits: []model.SearchHit{hit("E1", 0.85)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "hydrating serum", "hydrating serum keywords")

	if outcome.Selected == nil || outcome.Selected.ID != "E1" {
		t.Fatalf("expected E1 selected, got %+v", outcome.Selected)
	}
	if outcome.Note != "" {
		t.Errorf("expected empty note on success, got %q", outcome.Note)
	}
	if len(provider.calls) != 1 {
		t.Errorf("expected exactly 1 provider call, got %d (%v)", len(provider.calls), provider.calls)
	}
}

func TestResolve_ScoreExactlyAtThresholdIsAccepted(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords": {hits: []model.SearchHit{hit("E1", SimilarityThreshold)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected == nil || outcome.Selected.ID != "E1" {
		t.Fatalf("threshold score must be accepted, got %+v", outcome.Selected)
	}
	if len(provider.calls) != 1 {
		t.Errorf("keyword match at threshold must skip the direct stage, calls: %v", provider.calls)
	}
}

func TestResolve_BelowThresholdHitNeverSelected(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords": {hits: []model.SearchHit{hit("E1", 0.69)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected != nil {
		t.Fatalf("sub-threshold hit must not be selected, got %+v", outcome.Selected)
	}
	if outcome.NearMatch == nil || outcome.NearMatch.CatalogID != "E1" {
		t.Errorf("expected E1 retained as near match, got %+v", outcome.NearMatch)
	}
	if outcome.Note != NoteNearMatch {
		t.Errorf("expected near-match note, got %q", outcome.Note)
	}
}

func TestResolve_DirectOverridesOnStrictImprovement(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords":  {hits: []model.SearchHit{hit("E1", 0.50)}},
		"raw query": {hits: []model.SearchHit{hit("E2", 0.72)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected == nil || outcome.Selected.ID != "E2" {
		t.Fatalf("expected direct match E2 to win, got %+v", outcome.Selected)
	}
	if len(provider.calls) != 2 {
		t.Errorf("expected both stages to run, calls: %v", provider.calls)
	}
}

func TestResolve_SubThresholdDirectNeverDisplacesKeywordMatch(t *testing.T) {
	// Keyword 0.5, direct 0.6: direct never qualifies, the keyword hit
	// stays the winner and is reported as the near match.
	provider := &stubProvider{results: map[string]stubResult{
		"keywords":  {hits: []model.SearchHit{hit("E1", 0.50)}},
		"raw query": {hits: []model.SearchHit{hit("E2", 0.60)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected != nil {
		t.Fatalf("no hit cleared the threshold, got selection %+v", outcome.Selected)
	}
	if outcome.NearMatch == nil || outcome.NearMatch.CatalogID != "E1" {
		t.Errorf("expected keyword match E1 retained, got %+v", outcome.NearMatch)
	}
	if outcome.Note != NoteNearMatch {
		t.Errorf("expected near-match note, got %q", outcome.Note)
	}
}

func TestResolve_EmptyKeywordsShortCircuitToDirectSearch(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"glow toner": {hits: []model.SearchHit{hit("E3", 0.90)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "glow toner", "   ")

	if outcome.Selected == nil || outcome.Selected.ID != "E3" {
		t.Fatalf("expected E3 selected via direct search, got %+v", outcome.Selected)
	}
	if len(provider.calls) != 1 || provider.calls[0] != "glow toner" {
		t.Errorf("blank keywords must not trigger a provider call, calls: %v", provider.calls)
	}
}

func TestResolve_NoResultsFromEitherStage(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected != nil || outcome.NearMatch != nil {
		t.Fatalf("expected no winner at all, got %+v", outcome)
	}
	if outcome.Note != NoteNoMatch {
		t.Errorf("expected no-match note, got %q", outcome.Note)
	}
	if len(provider.calls) != 2 {
		t.Errorf("expected both stages attempted, calls: %v", provider.calls)
	}
}

func TestResolve_ProviderErrorOnBothStages(t *testing.T) {
	boom := errors.New("index unavailable")
	provider := &stubProvider{results: map[string]stubResult{
		"keywords":  {err: boom},
		"raw query": {err: boom},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected != nil {
		t.Fatalf("provider errors must yield no selection, got %+v", outcome.Selected)
	}
	if outcome.Note != NoteSearchIssue {
		t.Errorf("expected search-issue note, got %q", outcome.Note)
	}
}

func TestResolve_SuccessDiscardsErrorNoteFromLosingStage(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords":  {err: errors.New("index unavailable")},
		"raw query": {hits: []model.SearchHit{hit("E2", 0.90)}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected == nil || outcome.Selected.ID != "E2" {
		t.Fatalf("expected E2 selected despite keyword-stage error, got %+v", outcome.Selected)
	}
	if outcome.Note != "" {
		t.Errorf("success must clear the error note, got %q", outcome.Note)
	}
}

func TestResolve_ErrorNoteWinsOverNoMatch(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords": {err: errors.New("index unavailable")},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Note != NoteSearchIssue {
		t.Errorf("expected search-issue note to take precedence, got %q", outcome.Note)
	}
}

func TestResolve_HitWithoutMetadataIsNotSelected(t *testing.T) {
	provider := &stubProvider{results: map[string]stubResult{
		"keywords": {hits: []model.SearchHit{{CatalogID: "E9", Score: 0.92}}},
	}}
	r := New(provider)

	outcome := r.Resolve(context.Background(), "raw query", "keywords")

	if outcome.Selected != nil {
		t.Fatalf("a hit without catalog metadata must not become a card, got %+v", outcome.Selected)
	}
	if outcome.Note != NoteNearMatch {
		t.Errorf("expected near-match note, got %q", outcome.Note)
	}
}
