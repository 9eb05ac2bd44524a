package controllers

import (
	"context"
	"time"

	"marketplace/logger"
	"marketplace/services/notification"
	"marketplace/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	store    storage.Storage
	notifier notification.Notifier = notification.Nop{}
)

// SetStorage installs the object store used for product and category images.
func SetStorage(s storage.Storage) {
	store = s
}

func SetNotifier(n notification.Notifier) {
	if n == nil {
		n = notification.Nop{}
	}
	notifier = n
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func deleteImages(urls ...string) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := store.Delete(ctx, u); err != nil {
			logger.Log.WithError(err).WithField("url", u).Warn("failed to delete stored image")
		}
	}
}

func parseObjectIDs(raw []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		if id, err := primitive.ObjectIDFromHex(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
