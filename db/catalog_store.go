package db

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultDbName = "planetbeauty"

// CatalogStore is the write side of the catalog: the sync job replaces
// product documents and their embeddings in bulk. Reads go through the
// odm collections; only the ingestion path needs raw bulk writes.
type CatalogStore struct {
	database *mongo.Database
}

// ProvideCatalogStore connects to MongoDB using MONGO_URI and
// CATALOG_DB_NAME (defaults to planetbeauty).
func ProvideCatalogStore() (*CatalogStore, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	dbName := os.Getenv("CATALOG_DB_NAME")
	if dbName == "" {
		dbName = defaultDbName
	}

	return &CatalogStore{database: client.Database(dbName)}, nil
}

// UpsertProducts replaces the given products and their embeddings keyed
// by product id. Products and vectors must be index-aligned.
func (s *CatalogStore) UpsertProducts(ctx context.Context, products []ProductModel, vectors []ProductAnnModel) error {
	if len(products) == 0 {
		return nil
	}
	if len(products) != len(vectors) {
		return fmt.Errorf("products/vectors length mismatch: %d vs %d", len(products), len(vectors))
	}

	productWrites := make([]mongo.WriteModel, 0, len(products))
	vectorWrites := make([]mongo.WriteModel, 0, len(vectors))
	for i := range products {
		productWrites = append(productWrites, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": products[i].ProductID}).
			SetReplacement(products[i]).
			SetUpsert(true))
		vectorWrites = append(vectorWrites, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": vectors[i].ProductID}).
			SetReplacement(vectors[i]).
			SetUpsert(true))
	}

	if _, err := s.database.Collection(ProductCollection).BulkWrite(ctx, productWrites); err != nil {
		return fmt.Errorf("bulk write products: %w", err)
	}
	if _, err := s.database.Collection(VectorCollection).BulkWrite(ctx, vectorWrites); err != nil {
		return fmt.Errorf("bulk write product vectors: %w", err)
	}
	return nil
}
