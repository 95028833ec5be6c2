package plot

import (
	"context"
	"fmt"

	"garden-application-api-server/internal/docstore"
)

// Repository reads and writes squares/{plotID} documents.
type Repository struct {
	Store docstore.Store
}

// Fetch loads the grid of a plot. It returns docstore.ErrNotFound when the
// plot has no document yet, and ErrMalformedDocument or ErrCellOutOfRange when
// the stored document cannot be turned into a grid.
func (r Repository) Fetch(ctx context.Context, plotID string) (Grid, error) {
	raw, err := r.Store.Get(ctx, docstore.Squares, plotID)
	if err != nil {
		return Grid{}, err
	}
	return DecodeDocument(raw)
}

// Seed overwrites the plot document with an empty grid and returns that grid.
func (r Repository) Seed(ctx context.Context, plotID string) (Grid, error) {
	g := CreateEmpty()
	if err := r.Store.Set(ctx, docstore.Squares, plotID, Document{Cells: Serialize(g)}, docstore.SetOptions{}); err != nil {
		return Grid{}, fmt.Errorf("seed plot %s: %w", plotID, err)
	}
	return g, nil
}

// Save writes the full grid with merge semantics.
func (r Repository) Save(ctx context.Context, plotID string, g Grid) error {
	if err := r.Store.Set(ctx, docstore.Squares, plotID, Document{Cells: Serialize(g)}, docstore.SetOptions{Merge: true}); err != nil {
		return fmt.Errorf("save plot %s: %w", plotID, err)
	}
	return nil
}

func (r Repository) Delete(ctx context.Context, plotID string) error {
	return r.Store.Delete(ctx, docstore.Squares, plotID)
}
