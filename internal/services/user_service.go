// server/internal/services/user_service.go
package services

import (
	"context"
	"fmt"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/database"
	"coffee-os-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// withoutPassword keeps the hash out of reads that never need it.
var withoutPassword = bson.M{"password": 0}

type UserService struct {
	coll *mongo.Collection
}

func NewUserService(db *mongo.Database) *UserService {
	return &UserService{coll: db.Collection(database.Users)}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(withoutPassword).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	users, err := findAll[models.User](ctx, s.coll, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(withoutPassword)).Decode(&user)
	if err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound, "get user")
	}
	return &user, nil
}
