package controller

import (
	"net/http"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/planetbeauty/bella-shopping-assistant/db"
	"github.com/planetbeauty/bella-shopping-assistant/middleware"
)

// MetadataController exposes catalog facets to merchandising tooling.
type MetadataController struct {
	mongo *odm.MongoClient
}

func ProvideMetadataController(mongo odm.MongoClient) *MetadataController {
	return &MetadataController{
		mongo: &mongo,
	}
}

// ListVendors returns the distinct vendors currently in the indexed
// catalog.
func (mc *MetadataController) ListVendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var vendors []string
	err := odm.CollectionOf[db.ProductModel](*mc.mongo, catalogTenant()).DistinctInto(ctx, "vendor", nil, &vendors)
	if err != nil {
		http.Error(w, "Failed to fetch vendors", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"vendors": vendors})
}

// ListProductTypes returns the distinct product types in the catalog.
func (mc *MetadataController) ListProductTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var productTypes []string
	err := odm.CollectionOf[db.ProductModel](*mc.mongo, catalogTenant()).DistinctInto(ctx, "productType", nil, &productTypes)
	if err != nil {
		http.Error(w, "Failed to fetch product types", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"productTypes": productTypes})
}

func (mc *MetadataController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/metadata/vendors",
			Method:  http.MethodGet,
			Handler: middleware.APIKeyAuthMiddleware(mc.ListVendors),
		},
		{
			Pattern: "/metadata/product-types",
			Method:  http.MethodGet,
			Handler: middleware.APIKeyAuthMiddleware(mc.ListProductTypes),
		},
	}
}
