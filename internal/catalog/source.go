package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"bookminton/pkg/client"
	"bookminton/pkg/config"
	"bookminton/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

const (
	SportsCollectionName = "Sports"
	VenuesCollectionName = "Venues"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// Source yields the raw catalog document.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

type yamlSource struct {
	name string
	read func() ([]byte, error)
}

// EmbeddedSource serves the sample catalog compiled into the binary.
func EmbeddedSource() Source {
	return &yamlSource{
		name: "embedded",
		read: func() ([]byte, error) { return embeddedCatalog, nil },
	}
}

func FileSource(path string) Source {
	return &yamlSource{
		name: path,
		read: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

func (s *yamlSource) Fetch(_ context.Context) (*Document, error) {
	data, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.name, err)
	}
	return DecodeYAML(data)
}

// DecodeYAML parses a catalog document, rejecting unknown fields.
func DecodeYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &doc, nil
}

type mongoSource struct {
	db *mongo.Database
}

// MongoSource reads sports and venues from their collections. Venues are returned
// ordered by their position field.
func MongoSource(db *mongo.Database) Source {
	return &mongoSource{db: db}
}

func (s *mongoSource) Fetch(ctx context.Context) (*Document, error) {
	var doc Document

	cursor, err := s.db.Collection(SportsCollectionName).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find sports: %w", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &doc.Sports); err != nil {
		return nil, fmt.Errorf("failed to decode sports: %w", err)
	}

	cursor, err = s.db.Collection(VenuesCollectionName).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find venues: %w", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &doc.Venues); err != nil {
		return nil, fmt.Errorf("failed to decode venues: %w", err)
	}

	return &doc, nil
}

// Build fetches, validates and converts a catalog document.
func Build(ctx context.Context, src Source, v *DocumentValidator) (*Catalog, error) {
	doc, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(doc); err != nil {
		return nil, err
	}
	return New(doc.toModel()), nil
}

// Load builds the catalog from the source named in cfg. A mongo client opened for the
// load is closed before returning.
func Load(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	log := cfg.Log.Component("catalog")
	v := NewDocumentValidator(log)

	var src Source
	switch cfg.CatalogSource {
	case config.CatalogSourceFile:
		src = FileSource(cfg.CatalogPath)
	case config.CatalogSourceMongo:
		mc, err := client.NewMongoClient(ctx, log, cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			return nil, err
		}
		defer mc.Close(context.Background())
		src = MongoSource(mc.Database(cfg.MongoDatabaseName))
	default:
		src = EmbeddedSource()
	}

	c, err := Build(ctx, src, v)
	if err != nil {
		log.Error("Failed to load catalog",
			"source", cfg.CatalogSource,
			"error", err,
		)
		return nil, err
	}

	logCatalog(log, cfg.CatalogSource, c)
	return c, nil
}

func logCatalog(log *logger.Logger, source string, c *Catalog) {
	courts := 0
	for _, v := range c.venues {
		courts += len(v.Courts)
	}
	log.Info("Catalog loaded",
		"source", source,
		"venues", len(c.venues),
		"courts", courts,
		"sports", len(c.sports),
	)
}
