package model

// Interpretation is the typed result of the intent-interpretation call.
// All three fields must be present in the model output; searchKeywords may
// legitimately be empty when the query has no product intent.
type Interpretation struct {
	AIUnderstanding string `json:"ai_understanding"`
	Advice          string `json:"advice"`
	SearchKeywords  string `json:"search_keywords"`
}

// CatalogEntry is the read-only product metadata attached to a search hit.
// Deliberately a closed struct: the search layer validates provider
// metadata into these named fields instead of passing an open map around.
type CatalogEntry struct {
	ID          string
	Handle      string
	Title       string
	Price       string // pre-formatted, "N/A" when unknown
	ImageURL    string // empty when the product has no image
	ProductURL  string
	Vendor      string
	ProductType string
	Tags        []string
}

// SearchHit is one ranked result from the similarity search provider.
// Score is a similarity measure in [0,1], higher is more relevant.
// Entry is nil when the index row carries no usable metadata.
type SearchHit struct {
	CatalogID string
	Score     float64
	Entry     *CatalogEntry
}

// ResolutionOutcome is the single artifact the resolver produces per query.
// Selected is non-nil only when the winning hit cleared the similarity
// threshold. NearMatch retains a sub-threshold winner for reporting; it is
// never surfaced as a product card. Note is non-empty exactly when the
// search degraded (provider error, near miss, or no match at all).
type ResolutionOutcome struct {
	Selected  *CatalogEntry
	NearMatch *SearchHit
	Note      string
}
