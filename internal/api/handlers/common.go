// server/internal/api/handlers/common.go
package handlers

import (
	"context"
	"errors"
	"io"

	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/models"
	"garden-application-api-server/internal/socket"

	"go.mongodb.org/mongo-driver/bson"
)

// PhotoStore uploads pin photos and resolves object keys to public URLs.
// *s3.Uploader implements it.
type PhotoStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
	ObjectURL(objectKey string) string
}

// Broadcaster pushes live-update events. *socket.Hub implements it.
type Broadcaster interface {
	Broadcast(ev socket.Event)
}

var errPinNotFound = errors.New("pin not found")

func loadPin(ctx context.Context, store docstore.Store, id string) (models.Pin, error) {
	var pin models.Pin
	raw, err := store.Get(ctx, docstore.Pins, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pin, errPinNotFound
		}
		return pin, err
	}
	err = bson.Unmarshal(raw, &pin)
	return pin, err
}
