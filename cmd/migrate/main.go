package main

import (
	"context"
	"time"

	"bookminton/internal/catalog"
	"bookminton/internal/migrations"
	"bookminton/pkg/client"
	"bookminton/pkg/config"
)

const JobName = "catalog-migration"

// Seeds the Mongo catalog collections from CATALOG_PATH, or from the embedded sample
// catalog when no path is set.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.Log.Info("Starting catalog migration job")

	src, name := catalog.EmbeddedSource(), "embedded"
	if cfg.CatalogPath != "" {
		src, name = catalog.FileSource(cfg.CatalogPath), cfg.CatalogPath
	}

	doc, err := src.Fetch(ctx)
	if err != nil {
		cfg.Log.Fatal("Failed to read catalog", "source", name, "error", err)
	}
	if err := catalog.NewDocumentValidator(cfg.Log).Validate(doc); err != nil {
		cfg.Log.Fatal("Catalog document is invalid", "source", name, "error", err)
	}

	mc, err := client.NewMongoClient(ctx, cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mc.Close(context.Background())

	if err := migrations.RunMigration(ctx, mc.Database(cfg.MongoDatabaseName), doc, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully", "source", name)
}
