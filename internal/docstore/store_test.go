package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type testPin struct {
	Title     string  `bson:"title"`
	CreatedBy string  `bson:"createdBy"`
	Lat       float64 `bson:"lat"`
}

// runStoreTests checks the behaviour every backend must share.
func runStoreTests(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(ctx, Pins, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set replaces", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "one", "lat": 1.5}, SetOptions{}))
		require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "two"}, SetOptions{}))

		raw, err := s.Get(ctx, Pins, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", raw.Lookup("_id").StringValue())
		assert.Equal(t, "two", raw.Lookup("title").StringValue())
		_, err = raw.LookupErr("lat")
		assert.Error(t, err, "replace must drop fields the new document omits")
	})

	t.Run("set merges", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "one", "lat": 1.5}, SetOptions{}))
		require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "two"}, SetOptions{Merge: true}))

		raw, err := s.Get(ctx, Pins, "a")
		require.NoError(t, err)
		assert.Equal(t, "two", raw.Lookup("title").StringValue())
		assert.Equal(t, 1.5, raw.Lookup("lat").Double())
	})

	t.Run("merge creates", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, Squares, "p", bson.M{"cells": bson.A{}}, SetOptions{Merge: true}))
		_, err := s.Get(ctx, Squares, "p")
		assert.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "one"}, SetOptions{}))
		require.NoError(t, s.Delete(ctx, Pins, "a"))
		_, err := s.Get(ctx, Pins, "a")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, s.Delete(ctx, Pins, "a"), "deleting a missing document is not an error")
	})

	t.Run("add and list", func(t *testing.T) {
		s := open(t)
		first, err := s.Add(ctx, Pins, testPin{Title: "first", CreatedBy: "u1"})
		require.NoError(t, err)
		_, err = s.Add(ctx, Pins, testPin{Title: "second", CreatedBy: "u2"})
		require.NoError(t, err)
		_, err = s.Add(ctx, Pins, testPin{Title: "third", CreatedBy: "u1"})
		require.NoError(t, err)
		require.NotEmpty(t, first)

		all, err := s.List(ctx, Pins, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		var p testPin
		require.NoError(t, bson.Unmarshal(all[0], &p))
		assert.Equal(t, "first", p.Title)
		assert.Equal(t, first, all[0].Lookup("_id").StringValue())

		mine, err := s.List(ctx, Pins, bson.M{"createdBy": "u1"})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "third", mine[1].Lookup("title").StringValue())

		other, err := s.List(ctx, Users, nil)
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store { return NewMemory() })
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close(context.Background()) })
		return s
	})
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, Pins, "a", bson.M{"title": "one"}, SetOptions{}))

	raw, err := s.Get(ctx, Pins, "a")
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 0
	}

	again, err := s.Get(ctx, Pins, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", again.Lookup("title").StringValue())
}

func TestComposeKeepsFieldOrder(t *testing.T) {
	base, err := compose("x", bson.D{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, nil)
	require.NoError(t, err)

	merged, err := compose("x", bson.D{{Key: "c", Value: 3}, {Key: "a", Value: 9}}, base)
	require.NoError(t, err)

	elems, err := merged.Elements()
	require.NoError(t, err)
	keys := make([]string, len(elems))
	for i, e := range elems {
		keys[i] = e.Key()
	}
	assert.Equal(t, []string{"_id", "a", "b", "c"}, keys)
	assert.Equal(t, int32(9), merged.Lookup("a").Int32())
}

func TestMatches(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"createdBy": "u1", "lat": 2.5})
	require.NoError(t, err)

	assert.True(t, matches(raw, nil))
	assert.True(t, matches(raw, bson.M{"createdBy": "u1"}))
	assert.True(t, matches(raw, bson.M{"createdBy": "u1", "lat": 2.5}))
	assert.False(t, matches(raw, bson.M{"createdBy": "u2"}))
	assert.False(t, matches(raw, bson.M{"missing": "x"}))
}
