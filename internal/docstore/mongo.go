// server/internal/docstore/mongo.go
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores each collection in the MongoDB collection of the same name,
// keyed by a string _id.
type Mongo struct {
	DB *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{DB: db}
}

func (s *Mongo) Get(ctx context.Context, collection, id string) (bson.Raw, error) {
	raw, err := s.DB.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s/%s: %w", collection, id, err)
	}
	return raw, nil
}

// Set upserts doc. Merge writes the fields with $set; otherwise the stored
// document is replaced.
func (s *Mongo) Set(ctx context.Context, collection, id string, doc any, opts SetOptions) error {
	coll := s.DB.Collection(collection)
	if opts.Merge {
		_, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, err)
		}
		return nil
	}
	body, err := compose(id, doc, nil)
	if err != nil {
		return err
	}
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, body, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Add inserts doc under a fresh ObjectID rendered as hex, so ids look the same
// whichever backend produced them.
func (s *Mongo) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := primitive.NewObjectID().Hex()
	body, err := compose(id, doc, nil)
	if err != nil {
		return "", err
	}
	if _, err := s.DB.Collection(collection).InsertOne(ctx, body); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *Mongo) List(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := s.DB.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		docs = append(docs, cloneRaw(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.DB.Client().Disconnect(ctx)
}
