package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// templatesCollection is the Mongo collection holding circuit templates.
const templatesCollection = "templates"

// MongoStore persists records in a Mongo collection with a unique index on
// the canonical hash, so deduplication is enforced by the database even
// when several jobs insert concurrently.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the Mongo deployment at uri and ensures the
// unique canonical_hash index exists. The connection is verified with a
// ping before the store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(database).Collection(templatesCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "canonical_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Insert adds a record, translating the database's duplicate key error
// into ErrDuplicate.
func (s *MongoStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.coll.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// InsertBatch inserts records one by one, counting duplicates instead of
// failing on them. Any other error aborts with the counts so far.
func (s *MongoStore) InsertBatch(ctx context.Context, recs []*Record) (int, int, error) {
	added, duplicates := 0, 0
	for _, rec := range recs {
		switch err := s.Insert(ctx, rec); {
		case err == nil:
			added++
		case errors.Is(err, ErrDuplicate):
			duplicates++
		default:
			return added, duplicates, err
		}
	}
	return added, duplicates, nil
}

// Get returns the record for hash, or (nil, nil) when absent.
func (s *MongoStore) Get(ctx context.Context, hash string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"canonical_hash": hash}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a record with the hash is stored.
func (s *MongoStore) Exists(ctx context.Context, hash string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"canonical_hash": hash})
	return n > 0, err
}

// List returns matching records ordered by hardness score descending.
func (s *MongoStore) List(ctx context.Context, f Filter) ([]*Record, error) {
	filter := bson.M{}
	if f.Width != 0 {
		filter["width"] = f.Width
	}
	if f.Depth != 0 {
		filter["depth"] = f.Depth
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "hardness_score", Value: -1},
		{Key: "canonical_hash", Value: 1},
	})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByWidthDepth returns the census rows sorted by width, then depth.
func (s *MongoStore) CountByWidthDepth(ctx context.Context) ([]WidthDepthCount, error) {
	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "width", Value: "$width"},
				{Key: "depth", Value: "$depth"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.width", Value: 1},
			{Key: "_id.depth", Value: 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Width int `bson:"width"`
			Depth int `bson:"depth"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]WidthDepthCount, len(rows))
	for i, row := range rows {
		out[i] = WidthDepthCount{Width: row.ID.Width, Depth: row.ID.Depth, Count: row.Count}
	}
	return out, nil
}

// Stats summarizes the stored population with a single aggregation pass.
func (s *MongoStore) Stats(ctx context.Context) (*Stats, error) {
	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$width"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$hardness_score"}}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Width int     `bson:"_id"`
		Count int     `bson:"count"`
		Avg   float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &Stats{ByWidth: make(map[int]int)}
	weighted := 0.0
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByWidth[row.Width] = row.Count
		weighted += row.Avg * float64(row.Count)
	}
	if stats.Total > 0 {
		stats.AvgHardness = weighted / float64(stats.Total)
	}
	return stats, nil
}

// Close disconnects from the deployment.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
