// server/internal/services/common.go

// Package services holds the resource services: thin wrappers over the mongo
// collections that add existence and reference checks.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"coffee-os-api-server/internal/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.ErrInvalidID
	}
	return oid, nil
}

// notFound maps mongo.ErrNoDocuments to notFoundErr and wraps anything else.
func notFound(err error, notFoundErr *apperror.AppError, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFoundErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// errCannotExtractGeoKeys is the server code for a shape a 2dsphere index
// rejects, such as a self-intersecting ring.
const errCannotExtractGeoKeys = 16755

func isGeoKeyError(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(errCannotExtractGeoKeys)
}

// containsFold matches s anywhere in the field, case-insensitively.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func exists(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)
