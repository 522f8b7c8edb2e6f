package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"sitewise/server/internal/models"
)

const (
	searchesCollection    = "searches"
	comparisonsCollection = "comparisons"

	connectTimeout = 10 * time.Second
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// Database wraps the Mongo document store holding analysis and comparison
// records. Records are written once and never updated.
type Database struct {
	client      *mongo.Client
	searches    *mongo.Collection
	comparisons *mongo.Collection
	logger      *logrus.Logger
}

func NewDatabase(ctx context.Context, uri, name string, logger *logrus.Logger) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(name)
	d := &Database{
		client:      client,
		searches:    db.Collection(searchesCollection),
		comparisons: db.Collection(comparisonsCollection),
		logger:      logger,
	}

	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// ensureIndexes creates the geospatial index on the analysis centroid plus
// the lookup and recency indexes the read endpoints rely on.
func (d *Database) ensureIndexes(ctx context.Context) error {
	_, err := d.searches.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "center_location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "search_id", Value: 1}}},
		{Keys: bson.D{{Key: "analysis_date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create search indexes: %w", err)
	}

	_, err = d.comparisons.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "comparison_id", Value: 1}}},
		{Keys: bson.D{{Key: "comparison_date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comparison indexes: %w", err)
	}

	return nil
}

func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *Database) SaveSearch(ctx context.Context, record *models.AnalysisRecord) error {
	if _, err := d.searches.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}
	d.logger.WithField("search_id", record.SearchID).Debug("Stored analysis record")
	return nil
}

func (d *Database) GetSearch(ctx context.Context, searchID string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := d.searches.FindOne(ctx, bson.M{"search_id": searchID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis record: %w", err)
	}
	return &record, nil
}

func (d *Database) RecentSearches(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "analysis_date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := d.searches.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.AnalysisRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode recent searches: %w", err)
	}
	return records, nil
}

// SearchesNear returns stored analyses whose centroid lies within maxMeters
// of the given point, nearest first, using the 2dsphere index.
func (d *Database) SearchesNear(ctx context.Context, lat, lng float64, maxMeters int, limit int) ([]models.AnalysisRecord, error) {
	filter := bson.M{
		"center_location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}

	cursor, err := d.searches.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby searches: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.AnalysisRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode nearby searches: %w", err)
	}
	return records, nil
}

func (d *Database) SaveComparison(ctx context.Context, record *models.ComparisonRecord) error {
	if _, err := d.comparisons.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert comparison record: %w", err)
	}
	d.logger.WithField("comparison_id", record.ComparisonID).Debug("Stored comparison record")
	return nil
}

func (d *Database) RecentComparisons(ctx context.Context, limit int) ([]models.ComparisonRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "comparison_date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := d.comparisons.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent comparisons: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.ComparisonRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode recent comparisons: %w", err)
	}
	return records, nil
}
