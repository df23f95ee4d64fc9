package search

import (
	"context"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/embed"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/planetbeauty/bella-shopping-assistant/db"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// numCandidates controls ANN recall; generous relative to the tiny
	// topK values this service requests.
	numCandidates = 100

	// searchTimeout bounds one embed + ANN + metadata round trip.
	searchTimeout = 10 * time.Second
)

// Embedder is the slice of embed.Embedder the catalog search needs.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string, opts ...embed.EmbedOption) <-chan async.Result[[]float32]
}

// annCollection is the slice of the odm vector collection used here.
type annCollection interface {
	VectorSearch(ctx context.Context, vector []float32, params odm.VectorSearchParams) <-chan async.Result[[]odm.SearchHit[db.ProductAnnModel]]
}

// productCollection is the slice of the odm product collection used here.
type productCollection interface {
	Find(ctx context.Context, filter bson.M, sort bson.D, limit, skip int64) <-chan async.Result[[]db.ProductModel]
}

// CatalogSearch is the similarity search provider over the product
// catalog. Callers pass raw text; embedding is owned entirely by this
// type so query-time and ingest-time vectors always come from the same
// model.
type CatalogSearch struct {
	embedder Embedder
	vectors  annCollection
	products productCollection
}

func NewCatalogSearch(embedder Embedder, vectors annCollection, products productCollection) *CatalogSearch {
	return &CatalogSearch{
		embedder: embedder,
		vectors:  vectors,
		products: products,
	}
}

// ProvideCatalogSearch wires the provider from the injected mongo client
// and embedder.
func ProvideCatalogSearch(mongo odm.MongoClient, embedder embed.Embedder, tenant string) *CatalogSearch {
	return NewCatalogSearch(
		embedder,
		odm.CollectionOf[db.ProductAnnModel](mongo, tenant),
		odm.CollectionOf[db.ProductModel](mongo, tenant),
	)
}

// Search embeds the query text and returns the topK nearest catalog
// entries, best first. Blank input yields no results without touching
// the network. Hits whose metadata document is missing keep a nil Entry.
func (s *CatalogSearch) Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	emb, err := async.Await(s.embedder.GetEmbedding(ctx, query, embed.WithTask("retrieval.query")))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "embed query: %v", err)
	}

	annHits, err := async.Await(s.vectors.VectorSearch(ctx, emb, odm.VectorSearchParams{
		IndexName:     db.VectorIndexName,
		Path:          db.VectorPath,
		K:             topK,
		NumCandidates: numCandidates,
	}))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "vector search: %v", err)
	}
	if len(annHits) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(annHits))
	for _, h := range annHits {
		ids = append(ids, h.Doc.Id())
	}

	entryByID := s.fetchEntries(ctx, ids)

	hits := make([]model.SearchHit, 0, len(annHits))
	for _, h := range annHits {
		hits = append(hits, model.SearchHit{
			CatalogID: h.Doc.Id(),
			Score:     h.Score,
			Entry:     entryByID[h.Doc.Id()],
		})
	}
	return hits, nil
}

// fetchEntries loads product metadata in one round trip; a failed lookup
// degrades to hits without metadata rather than failing the search.
func (s *CatalogSearch) fetchEntries(ctx context.Context, ids []string) map[string]*model.CatalogEntry {
	entries := make(map[string]*model.CatalogEntry, len(ids))

	products, err := async.Await(s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil, 0, 0))
	if err != nil {
		logger.Error("Failed to fetch product metadata", zap.Error(err))
		return entries
	}

	for i := range products {
		if entry := entryFromProduct(&products[i]); entry != nil {
			entries[products[i].ProductID] = entry
		}
	}
	return entries
}

// entryFromProduct validates a raw catalog document into the closed
// CatalogEntry shape. Documents missing identity or display fields are
// dropped here, at the provider boundary.
func entryFromProduct(p *db.ProductModel) *model.CatalogEntry {
	if p.ProductID == "" || p.Title == "" || p.ProductURL == "" {
		return nil
	}

	price := p.Price
	if price == "" {
		price = "N/A"
	}

	return &model.CatalogEntry{
		ID:          p.ProductID,
		Handle:      p.Handle,
		Title:       p.Title,
		Price:       price,
		ImageURL:    p.ImageURL,
		ProductURL:  p.ProductURL,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Tags:        p.Tags,
	}
}
