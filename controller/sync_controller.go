package controller

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/embed"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/planetbeauty/bella-shopping-assistant/db"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"github.com/planetbeauty/bella-shopping-assistant/shopify"
	"go.uber.org/zap"
)

const (
	shopifyPageSize = 50
	upsertBatchSize = 100
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>?`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// productFetcher pages products out of the store backend.
type productFetcher interface {
	FetchProducts(ctx context.Context, cursor string, limit int) (*shopify.FetchResult, error)
	StoreDomain() string
}

// catalogWriter persists products and their embeddings.
type catalogWriter interface {
	UpsertProducts(ctx context.Context, products []db.ProductModel, vectors []db.ProductAnnModel) error
}

// passageEmbedder is the slice of embed.Embedder the sync path needs.
type passageEmbedder interface {
	GetEmbedding(ctx context.Context, text string, opts ...embed.EmbedOption) <-chan async.Result[[]float32]
}

// SyncController walks the Shopify catalog and refreshes the product
// index. It is triggered by a cron hitting /products/sync with the
// shared secret.
type SyncController struct {
	embedder passageEmbedder
	store    catalogWriter

	// newFetcher is resolved per request so the service can boot
	// without Shopify credentials configured.
	newFetcher func() (productFetcher, error)
}

func ProvideSyncController(embedder embed.Embedder, store *db.CatalogStore) *SyncController {
	return &SyncController{
		embedder: embedder,
		store:    store,
		newFetcher: func() (productFetcher, error) {
			return shopify.NewClientFromEnv()
		},
	}
}

// HandleSync runs a full catalog sync. One pass over the Shopify cursor
// pagination; failures on individual products are counted and skipped.
func (sc *SyncController) HandleSync(w http.ResponseWriter, r *http.Request) {
	cronSecret := os.Getenv("CRON_SECRET")
	if cronSecret == "" {
		logger.Error("CRON_SECRET is not set")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Configuration error: Sync secret not set."})
		return
	}
	if r.URL.Query().Get("secret") != cronSecret {
		logger.Error("Unauthorized sync attempt")
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: "Unauthorized"})
		return
	}

	fetcher, err := sc.newFetcher()
	if err != nil {
		logger.Error("Shopify client unavailable", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Configuration error: store credentials not set."})
		return
	}

	ctx := r.Context()
	start := time.Now()
	totalFetched, totalProcessed, totalErrors := 0, 0, 0

	var productBatch []db.ProductModel
	var vectorBatch []db.ProductAnnModel
	flush := func() error {
		if len(productBatch) == 0 {
			return nil
		}
		if err := sc.store.UpsertProducts(ctx, productBatch, vectorBatch); err != nil {
			return err
		}
		logger.Info("Upserted product batch", zap.Int("count", len(productBatch)))
		productBatch = productBatch[:0]
		vectorBatch = vectorBatch[:0]
		return nil
	}

	cursor := ""
	for {
		page, err := fetcher.FetchProducts(ctx, cursor, shopifyPageSize)
		if err != nil {
			logger.Error("Shopify fetch failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: fmt.Sprintf("Sync failed: %v", err)})
			return
		}
		totalFetched += len(page.Products)
		if len(page.Products) == 0 {
			break
		}

		for i := range page.Products {
			node := &page.Products[i]
			productModel, ok := productFromNode(node, fetcher.StoreDomain())
			if !ok {
				logger.Info("Skipping product with missing identity fields", zap.String("gid", node.ID))
				totalErrors++
				continue
			}

			emb, err := async.Await(sc.embedder.GetEmbedding(ctx, productModel.SearchText, embed.WithTask("retrieval.passage")))
			if err != nil {
				logger.Error("Embedding failed for product", zap.String("title", node.Title), zap.Error(err))
				totalErrors++
				continue
			}

			productBatch = append(productBatch, *productModel)
			vectorBatch = append(vectorBatch, db.ProductAnnModel{
				ProductID: productModel.ProductID,
				Embedding: emb,
				SyncedAt:  productModel.SyncedAt,
			})
			totalProcessed++

			if len(productBatch) >= upsertBatchSize {
				if err := flush(); err != nil {
					logger.Error("Catalog upsert failed", zap.Error(err))
					writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: fmt.Sprintf("Sync failed: %v", err)})
					return
				}
			}
		}

		if page.NextPageCursor == "" {
			break
		}
		cursor = page.NextPageCursor
	}

	if err := flush(); err != nil {
		logger.Error("Catalog upsert failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: fmt.Sprintf("Sync failed: %v", err)})
		return
	}

	summary := fmt.Sprintf("Sync complete in %.2fs. Total Fetched: %d, Successfully Processed & Upserted: %d, Errors: %d",
		time.Since(start).Seconds(), totalFetched, totalProcessed, totalErrors)
	logger.Info("Catalog sync finished",
		zap.Int("fetched", totalFetched),
		zap.Int("processed", totalProcessed),
		zap.Int("errors", totalErrors))
	writeJSON(w, http.StatusOK, map[string]string{"message": summary})
}

// productFromNode validates one Shopify node into a catalog document.
// Returns false when identity fields are missing.
func productFromNode(node *shopify.ProductNode, storeDomain string) (*db.ProductModel, bool) {
	if node.ID == "" || node.Handle == "" || node.Title == "" {
		return nil, false
	}
	productID := numericID(node.ID)
	if productID == "" {
		return nil, false
	}

	productURL := node.OnlineStoreURL
	if productURL == "" {
		productURL = fmt.Sprintf("https://%s/products/%s", storeDomain, node.Handle)
	}

	imageURL := ""
	if node.FeaturedImage != nil {
		imageURL = node.FeaturedImage.URL
	}

	return &db.ProductModel{
		ProductID:   productID,
		GID:         node.ID,
		Handle:      node.Handle,
		Title:       node.Title,
		Price:       formatPrice(node),
		ImageURL:    imageURL,
		ProductURL:  productURL,
		Vendor:      node.Vendor,
		ProductType: node.ProductType,
		Tags:        node.Tags,
		SearchText:  buildSearchText(node),
		SyncedAt:    time.Now().Unix(),
	}, true
}

// numericID extracts the trailing numeric id from a Shopify GID like
// gid://shopify/Product/12345.
func numericID(gid string) string {
	parts := strings.Split(gid, "/")
	return parts[len(parts)-1]
}

// formatPrice renders the price range as "min CUR" or "min - max CUR",
// falling back to N/A.
func formatPrice(node *shopify.ProductNode) string {
	minPrice := node.PriceRangeV2.MinVariantPrice
	maxPrice := node.PriceRangeV2.MaxVariantPrice
	if minPrice.Amount == "" {
		return "N/A"
	}
	if maxPrice.Amount != "" && maxPrice.Amount != minPrice.Amount {
		return fmt.Sprintf("%s - %s %s", minPrice.Amount, maxPrice.Amount, minPrice.CurrencyCode)
	}
	return fmt.Sprintf("%s %s", minPrice.Amount, minPrice.CurrencyCode)
}

// buildSearchText is the text that gets embedded for a product.
func buildSearchText(node *shopify.ProductNode) string {
	description := strings.TrimSpace(whitespaceRe.ReplaceAllString(htmlTagRe.ReplaceAllString(node.BodyHTML, " "), " "))
	if len(description) > 500 {
		description = description[:500]
	}
	return fmt.Sprintf("Product: %s\nBrand: %s\nType: %s\nTags: %s\nDescription: %s",
		node.Title, node.Vendor, node.ProductType, strings.Join(node.Tags, ", "), description)
}

func (sc *SyncController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/products/sync",
			Method:  http.MethodGet,
			Handler: sc.HandleSync,
		},
	}
}
