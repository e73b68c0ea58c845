// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"coffee-os-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names, pluralised the way the web client's old backend did.
const (
	CoffeeShops = "coffeeshops"
	BeanOrigins = "beanorigins"
	Zones       = "zones"
	Users       = "users"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// IndexModels lists the indexes every collection needs.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CoffeeShops: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("slug_unique")},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}, Options: options.Index().SetName("location_2dsphere")},
			{Keys: bson.D{{Key: "vibe", Value: 1}}, Options: options.Index().SetName("vibe")},
		},
		BeanOrigins: {
			{Keys: bson.D{{Key: "coffeeShopId", Value: 1}}, Options: options.Index().SetName("coffeeShopId")},
		},
		Zones: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}, Options: options.Index().SetName("location_2dsphere")},
		},
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
	}
}

// EnsureIndexes creates the indexes; existing ones are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range IndexModels() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
