// Package mongo implements the repositories on a MongoDB document store.
package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civic-backend/internal/repository"
)

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// oid parses a hex id; ok is false for anything that is not an ObjectID.
func oid(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return id.Hex()
}
