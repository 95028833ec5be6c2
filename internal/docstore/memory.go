package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type memoryDoc struct {
	seq  uint64
	body bson.Raw
}

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu    sync.RWMutex
	seq   uint64
	colls map[string]map[string]memoryDoc
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{colls: make(map[string]map[string]memoryDoc)}
}

func (m *Memory) Get(ctx context.Context, collection, id string) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.colls[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRaw(d.body), nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc any, opts SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collection(collection)
	existing, ok := coll[id]
	var base bson.Raw
	if ok && opts.Merge {
		base = existing.body
	}
	body, err := compose(id, doc, base)
	if err != nil {
		return err
	}
	seq := existing.seq
	if !ok {
		m.seq++
		seq = m.seq
	}
	coll[id] = memoryDoc{seq: seq, body: body}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.colls[collection], id)
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, doc, SetOptions{}); err != nil {
		return "", err
	}
	return id, nil
}

// List returns matching documents in insertion order.
func (m *Memory) List(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	docs := make([]memoryDoc, 0, len(m.colls[collection]))
	for _, d := range m.colls[collection] {
		if matches(d.body, filter) {
			docs = append(docs, d)
		}
	}
	m.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })
	out := make([]bson.Raw, len(docs))
	for i, d := range docs {
		out[i] = cloneRaw(d.body)
	}
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) collection(name string) map[string]memoryDoc {
	coll, ok := m.colls[name]
	if !ok {
		coll = make(map[string]memoryDoc)
		m.colls[name] = coll
	}
	return coll
}

func cloneRaw(r bson.Raw) bson.Raw {
	return append(bson.Raw(nil), r...)
}
