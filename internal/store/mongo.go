package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore is the production Store backed by go.mongodb.org/mongo-driver.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore connects to uri and selects database dbName. Grounded on
// original_source/backend/db/mongo.py's module-level client construction.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{db: client.Database(dbName)}, nil
}

// Collection returns the named Mongo-backed collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

// Ping checks connectivity via the "ping" admin command, matching the
// abstract contract's command("ping").
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, bson.M(filter)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *mongoCollection) Find(ctx context.Context, filter map[string]interface{}, sortField string, descending bool, limit int) ([]map[string]interface{}, error) {
	opts := options.Find()
	if sortField != "" {
		dir := 1
		if descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sortField, Value: dir}})
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := c.coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []map[string]interface{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc map[string]interface{}) error {
	_, err := c.coll.InsertOne(ctx, bson.M(doc))
	return err
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter map[string]interface{}, update Update) error {
	mongoUpdate := toMongoUpdate(update)
	opts := options.Update().SetUpsert(update.Upsert)
	_, err := c.coll.UpdateOne(ctx, bson.M(filter), mongoUpdate, opts)
	return err
}

func (c *mongoCollection) BulkWrite(ctx context.Context, ops []BulkOp) error {
	if len(ops) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M(op.Filter)).
			SetUpdate(toMongoUpdate(op.Update)).
			SetUpsert(op.Update.Upsert)
		models = append(models, model)
	}
	_, err := c.coll.BulkWrite(ctx, models)
	return err
}

func (c *mongoCollection) CountDocuments(ctx context.Context, filter map[string]interface{}) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.M(filter))
}

func (c *mongoCollection) CreateIndex(ctx context.Context, spec IndexSpec) error {
	keys := bson.D{}
	for _, field := range spec.Fields {
		keys = append(keys, bson.E{Key: field, Value: 1})
	}
	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(spec.Unique),
	}
	_, err := c.coll.Indexes().CreateOne(ctx, model)
	return err
}

func toMongoUpdate(update Update) bson.M {
	doc := bson.M{}
	if len(update.Set) > 0 {
		doc["$set"] = bson.M(update.Set)
	}
	if len(update.Push) > 0 {
		doc["$push"] = bson.M(update.Push)
	}
	if len(update.Unset) > 0 {
		unset := bson.M{}
		for _, field := range update.Unset {
			unset[field] = ""
		}
		doc["$unset"] = unset
	}
	return doc
}
