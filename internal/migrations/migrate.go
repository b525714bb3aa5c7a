// Package migrations prepares the Mongo collections the catalog can be loaded from and
// seeds them from a catalog document.
package migrations

import (
	"context"
	"fmt"

	"bookminton/internal/catalog"
	"bookminton/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var VenuesIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}},
	{Keys: bson.D{{Key: "courts.sports.sport", Value: 1}}},
}

type collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var collections = []collection{
	{Name: catalog.SportsCollectionName, Validator: SportValidator},
	{Name: catalog.VenuesCollectionName, Indexes: VenuesIndexes, Validator: VenueValidator},
}

// RunMigration ensures the catalog collections exist with their validators and
// indexes, then upserts every sport and venue in doc. Venues no longer in doc are
// removed so the stored catalog matches doc exactly.
func RunMigration(ctx context.Context, db *mongo.Database, doc *catalog.Document, log *logger.Logger) error {
	log.Info("Running catalog migrations", "database", db.Name())

	for _, c := range collections {
		if err := ensureCollection(ctx, db, c.Name, c.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", c.Name, err)
		}
		if err := ensureIndexes(ctx, db, c.Name, c.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", c.Name, err)
		}
	}

	resolved := doc.WithResolvedIDs()
	sports, venues := SeedModels(resolved)

	if err := seed(ctx, db.Collection(catalog.SportsCollectionName), sports, sportIDs(resolved)); err != nil {
		return fmt.Errorf("failed to seed sports: %w", err)
	}
	if err := seed(ctx, db.Collection(catalog.VenuesCollectionName), venues, venueIDs(resolved)); err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}

	log.Info("Catalog migrations applied",
		"sports", len(resolved.Sports),
		"venues", len(resolved.Venues),
	)
	return nil
}

// SeedModels builds one replace-or-insert per document keyed by _id.
func SeedModels(doc catalog.Document) (sports, venues []mongo.WriteModel) {
	for _, s := range doc.Sports {
		sports = append(sports, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": s.ID}).
			SetReplacement(s).
			SetUpsert(true))
	}
	for _, v := range doc.Venues {
		venues = append(venues, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": v.ID}).
			SetReplacement(v).
			SetUpsert(true))
	}
	return sports, venues
}

func sportIDs(doc catalog.Document) []string {
	ids := make([]string, 0, len(doc.Sports))
	for _, s := range doc.Sports {
		ids = append(ids, s.ID)
	}
	return ids
}

func venueIDs(doc catalog.Document) []string {
	ids := make([]string, 0, len(doc.Venues))
	for _, v := range doc.Venues {
		ids = append(ids, v.ID)
	}
	return ids
}

func seed(ctx context.Context, coll *mongo.Collection, models []mongo.WriteModel, keep []string) error {
	if len(models) > 0 {
		if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
			return err
		}
	}
	_, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": keep}})
	return err
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
