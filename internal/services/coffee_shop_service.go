// server/internal/services/coffee_shop_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/database"
	"coffee-os-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CoffeeShopService struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCoffeeShopService(db *mongo.Database) *CoffeeShopService {
	return &CoffeeShopService{coll: db.Collection(database.CoffeeShops), now: time.Now}
}

// ShopFilter narrows List. Zero values mean no filtering.
type ShopFilter struct {
	Vibe  string
	Query string
	// Near sorts by distance from the point; MaxDistance is in metres.
	Near        *models.GeoPoint
	MaxDistance float64
}

func (f ShopFilter) bson() bson.M {
	filter := bson.M{}
	if f.Vibe != "" {
		filter["vibe"] = f.Vibe
	}
	if f.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(f.Query)},
			bson.M{"address": containsFold(f.Query)},
		}
	}
	if f.Near != nil {
		near := bson.M{"$geometry": f.Near}
		if f.MaxDistance > 0 {
			near["$maxDistance"] = f.MaxDistance
		}
		filter["location"] = bson.M{"$nearSphere": near}
	}
	return filter
}

func (s *CoffeeShopService) List(ctx context.Context, f ShopFilter) ([]models.CoffeeShop, error) {
	opts := options.Find()
	// $nearSphere already orders by distance.
	if f.Near == nil {
		opts.SetSort(bson.D{{Key: "name", Value: 1}})
	}
	shops, err := findAll[models.CoffeeShop](ctx, s.coll, f.bson(), opts)
	if err != nil {
		return nil, fmt.Errorf("list coffee shops: %w", err)
	}
	return shops, nil
}

func (s *CoffeeShopService) Get(ctx context.Context, id string) (*models.CoffeeShop, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var shop models.CoffeeShop
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&shop); err != nil {
		return nil, notFound(err, apperror.ErrShopNotFound, "get coffee shop")
	}
	return &shop, nil
}

// Exists reports whether a shop with the given id is stored.
func (s *CoffeeShopService) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, s.coll, id)
	if err != nil {
		return false, fmt.Errorf("check coffee shop: %w", err)
	}
	return ok, nil
}

func (s *CoffeeShopService) Create(ctx context.Context, shop *models.CoffeeShop) error {
	shop.ID = primitive.NilObjectID
	shop.Normalize()
	if shop.Slug == "" {
		return apperror.BadRequest("A name or slug with letters or digits is required.")
	}
	now := s.now()
	shop.CreatedAt, shop.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, shop)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.ErrSlugInUse
		}
		return fmt.Errorf("create coffee shop: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		shop.ID = oid
	}
	return nil
}

func (s *CoffeeShopService) Update(ctx context.Context, id string, patch models.CoffeeShopPatch) (*models.CoffeeShop, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if patch.Slug != nil && models.Slugify(*patch.Slug) == "" {
		return nil, apperror.BadRequest("Slug must contain letters or digits.")
	}
	return s.findOneAndUpdate(ctx, oid, bson.M{"$set": patch.SetDoc(s.now())})
}

// AddImage appends an image URL to the shop.
func (s *CoffeeShopService) AddImage(ctx context.Context, id, url string) (*models.CoffeeShop, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOneAndUpdate(ctx, oid, bson.M{
		"$push": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": s.now()},
	})
}

func (s *CoffeeShopService) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*models.CoffeeShop, error) {
	var shop models.CoffeeShop
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, afterUpdate).Decode(&shop)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.ErrSlugInUse
		}
		return nil, notFound(err, apperror.ErrShopNotFound, "update coffee shop")
	}
	return &shop, nil
}

func (s *CoffeeShopService) Delete(ctx context.Context, id string) (*models.CoffeeShop, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var shop models.CoffeeShop
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&shop); err != nil {
		return nil, notFound(err, apperror.ErrShopNotFound, "delete coffee shop")
	}
	return &shop, nil
}

// WithinPolygon returns the shops located inside polygon.
func (s *CoffeeShopService) WithinPolygon(ctx context.Context, polygon models.GeoPolygon) ([]models.CoffeeShop, error) {
	filter := bson.M{"location": bson.M{"$geoWithin": bson.M{"$geometry": polygon}}}
	shops, err := findAll[models.CoffeeShop](ctx, s.coll, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("shops within polygon: %w", err)
	}
	return shops, nil
}
