// Package docstore is the document store the API persists pins, users and
// plot grids in. Documents are addressed by collection and string id, the way
// the mobile client's managed backend addresses them.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("docstore: document not found")

// SetOptions controls how Set writes a document.
type SetOptions struct {
	// Merge keeps stored top-level fields that doc does not mention. Without it
	// the stored document is replaced.
	Merge bool
}

// Store is implemented by every backend.
type Store interface {
	Get(ctx context.Context, collection, id string) (bson.Raw, error)
	Set(ctx context.Context, collection, id string, doc any, opts SetOptions) error
	Delete(ctx context.Context, collection, id string) error
	// Add stores doc under a new store-generated id and returns that id.
	Add(ctx context.Context, collection string, doc any) (string, error)
	// List returns the documents whose top-level fields equal every entry of filter.
	List(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error)
	Close(ctx context.Context) error
}

// Collection names shared by the API and the tooling.
const (
	Pins    = "pins"
	Squares = "squares"
	Users   = "users"
)

// compose builds the stored form of doc under id. With a non-nil base the
// stored fields of base are kept unless doc overrides them.
func compose(id string, doc any, base bson.Raw) (bson.Raw, error) {
	update, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	updateElems, err := bson.Raw(update).Elements()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	overrides := make(map[string]bson.RawValue, len(updateElems))
	for _, e := range updateElems {
		if e.Key() != "_id" {
			overrides[e.Key()] = e.Value()
		}
	}

	out := bson.D{{Key: "_id", Value: id}}
	if base != nil {
		baseElems, err := base.Elements()
		if err != nil {
			return nil, fmt.Errorf("read stored document: %w", err)
		}
		for _, e := range baseElems {
			key := e.Key()
			if key == "_id" {
				continue
			}
			if v, ok := overrides[key]; ok {
				out = append(out, bson.E{Key: key, Value: v})
				delete(overrides, key)
				continue
			}
			out = append(out, bson.E{Key: key, Value: e.Value()})
		}
	}
	for _, e := range updateElems {
		if v, ok := overrides[e.Key()]; ok {
			out = append(out, bson.E{Key: e.Key(), Value: v})
		}
	}
	return bson.Marshal(out)
}

// matches reports whether raw has every filter field with an equal value.
func matches(raw bson.Raw, filter bson.M) bool {
	for key, want := range filter {
		got, err := raw.LookupErr(key)
		if err != nil {
			return false
		}
		t, data, err := bson.MarshalValue(want)
		if err != nil {
			return false
		}
		if !got.Equal(bson.RawValue{Type: t, Value: data}) {
			return false
		}
	}
	return true
}
