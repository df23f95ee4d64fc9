package db

// Atlas search index configuration for the product catalog. The vector
// index must be created on the product_vectors collection with cosine
// similarity so that scores come back normalised to [0,1].
const (
	ProductCollection = "products"
	VectorCollection  = "product_vectors"

	VectorIndexName = "product_embedding_index"
	VectorPath      = "embedding"
)

// ProductModel is the catalog document written by the sync job and read
// back to hydrate search hits. _id is the numeric Shopify product id.
type ProductModel struct {
	ProductID   string   `bson:"_id"`
	GID         string   `bson:"gid"` // Shopify global id, kept for traceability
	Handle      string   `bson:"handle"`
	Title       string   `bson:"title"`
	Price       string   `bson:"price"`
	ImageURL    string   `bson:"imageUrl,omitempty"`
	ProductURL  string   `bson:"productUrl"`
	Vendor      string   `bson:"vendor,omitempty"`
	ProductType string   `bson:"productType,omitempty"`
	Tags        []string `bson:"tags,omitempty"`
	SearchText  string   `bson:"searchText"`
	SyncedAt    int64    `bson:"syncedAt"`
}

func (m ProductModel) Id() string {
	return m.ProductID
}

func (m ProductModel) CollectionName() string {
	return ProductCollection
}

// ProductAnnModel holds the embedding for one product, kept in a separate
// collection so the ANN index stays narrow.
type ProductAnnModel struct {
	ProductID string    `bson:"_id"`
	Embedding []float32 `bson:"embedding"`
	SyncedAt  int64     `bson:"syncedAt"`
}

func (m ProductAnnModel) Id() string {
	return m.ProductID
}

func (m ProductAnnModel) CollectionName() string {
	return VectorCollection
}
