// server/internal/database/seeder.go
package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"coffee-os-api-server/internal/auth"
	"coffee-os-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedAdmin creates the admin account unless a user with that email exists.
// An empty password skips seeding.
func SeedAdmin(ctx context.Context, db *mongo.Database, email, password string) error {
	if password == "" {
		zap.L().Info("admin password not set, admin seeding skipped")
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	userCollection := db.Collection(Users)

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("count admin: %w", err)
	}
	if count > 0 {
		zap.L().Info("admin already exists, seeding skipped", zap.String("email", email))
		return nil
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := models.User{
		Email:     email,
		Username:  "admin",
		FullName:  "CoffeeOS Admin",
		Password:  hashedPassword,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := userCollection.InsertOne(ctx, admin); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	zap.L().Info("admin seeded", zap.String("email", email))
	return nil
}

// SeedFile is the layout of the YAML seed file.
type SeedFile struct {
	CoffeeShops []SeedShop `yaml:"coffeeShops"`
}

type SeedShop struct {
	Name        string           `yaml:"name"`
	Slug        string           `yaml:"slug"`
	Description string           `yaml:"description"`
	Address     string           `yaml:"address"`
	Vibe        string           `yaml:"vibe"`
	Location    []float64        `yaml:"location"`
	Amenities   models.Amenities `yaml:"amenities"`
	Rating      float64          `yaml:"rating"`
	Images      []string         `yaml:"images"`
}

// LoadSeedFile parses the YAML seed file at path.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %q: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, s := range f.CoffeeShops {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("seed shop %d: name is required", i)
		}
		if len(s.Location) != 2 {
			return nil, fmt.Errorf("seed shop %q: location must be [lng, lat]", s.Name)
		}
	}
	return &f, nil
}

// Shops converts the seed entries to documents.
func (f *SeedFile) Shops(now time.Time) []models.CoffeeShop {
	shops := make([]models.CoffeeShop, 0, len(f.CoffeeShops))
	for _, s := range f.CoffeeShops {
		shop := models.CoffeeShop{
			Name:        s.Name,
			Slug:        s.Slug,
			Description: s.Description,
			Address:     s.Address,
			Vibe:        s.Vibe,
			Location:    models.NewGeoPoint(s.Location[0], s.Location[1]),
			Amenities:   s.Amenities,
			Rating:      s.Rating,
			Images:      s.Images,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		shop.Normalize()
		shops = append(shops, shop)
	}
	return shops
}

// SeedCoffeeShops inserts the shops from the seed file when the collection is empty.
func SeedCoffeeShops(ctx context.Context, db *mongo.Database, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	coll := db.Collection(CoffeeShops)

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count coffee shops: %w", err)
	}
	if count > 0 {
		zap.L().Info("coffee shops present, seeding skipped", zap.Int64("count", count))
		return 0, nil
	}

	f, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	shops := f.Shops(time.Now())
	if len(shops) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(shops))
	for i := range shops {
		docs[i] = shops[i]
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert seed shops: %w", err)
	}

	zap.L().Info("coffee shops seeded", zap.Int("count", len(res.InsertedIDs)))
	return len(res.InsertedIDs), nil
}
