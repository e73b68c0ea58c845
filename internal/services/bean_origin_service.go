// server/internal/services/bean_origin_service.go
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
)

type BeanOriginService struct {
	coll  *mongo.Collection
	shops *CoffeeShopService
	now   func() time.Time
}

func NewBeanOriginService(db *mongo.Database, shops *CoffeeShopService) *BeanOriginService {
	return &BeanOriginService{coll: db.Collection(database.BeanOrigins), shops: shops, now: time.Now}
}

// BeanFilter narrows List. Zero values mean no filtering.
type BeanFilter struct {
	Process      string
	RoastLevel   string
	CoffeeShopID string
	Query        string
}

func (f BeanFilter) bson() (bson.M, error) {
	filter := bson.M{}
	if f.Process != "" {
		filter["process"] = f.Process
	}
	if f.RoastLevel != "" {
		filter["roastLevel"] = f.RoastLevel
	}
	if f.CoffeeShopID != "" {
		oid, err := parseID(f.CoffeeShopID)
		if err != nil {
			return nil, err
		}
		filter["coffeeShopId"] = oid
	}
	if f.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(f.Query)},
			bson.M{"roaster": containsFold(f.Query)},
			bson.M{"originRegion": containsFold(f.Query)},
		}
	}
	return filter, nil
}

// populate resolves coffeeShopId into the coffeeShop field.
func populate(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CoffeeShops,
			"localField":   "coffeeShopId",
			"foreignField": "_id",
			"as":           "coffeeShop",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$coffeeShop", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}
}

func (s *BeanOriginService) aggregate(ctx context.Context, match bson.M) ([]models.PopulatedBeanOrigin, error) {
	cursor, err := s.coll.Aggregate(ctx, populate(match))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	beans := []models.PopulatedBeanOrigin{}
	if err := cursor.All(ctx, &beans); err != nil {
		return nil, err
	}
	return beans, nil
}

func (s *BeanOriginService) List(ctx context.Context, f BeanFilter) ([]models.PopulatedBeanOrigin, error) {
	match, err := f.bson()
	if err != nil {
		return nil, err
	}
	beans, err := s.aggregate(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("list beans: %w", err)
	}
	return beans, nil
}

func (s *BeanOriginService) Get(ctx context.Context, id string) (*models.PopulatedBeanOrigin, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, oid)
}

func (s *BeanOriginService) get(ctx context.Context, oid primitive.ObjectID) (*models.PopulatedBeanOrigin, error) {
	beans, err := s.aggregate(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("get bean: %w", err)
	}
	if len(beans) == 0 {
		return nil, apperror.ErrBeanNotFound
	}
	return &beans[0], nil
}

func (s *BeanOriginService) requireShop(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.shops.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrShopNotFound
	}
	return nil
}

// Create stores bean after checking that its coffee shop exists and returns
// the populated result.
func (s *BeanOriginService) Create(ctx context.Context, bean *models.BeanOrigin) (*models.PopulatedBeanOrigin, error) {
	if err := s.requireShop(ctx, bean.CoffeeShopID); err != nil {
		return nil, err
	}
	bean.ID = primitive.NilObjectID
	now := s.now()
	bean.CreatedAt, bean.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, bean)
	if err != nil {
		return nil, fmt.Errorf("create bean: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		bean.ID = oid
	}
	return s.get(ctx, bean.ID)
}

func (s *BeanOriginService) Update(ctx context.Context, id string, patch models.BeanOriginPatch) (*models.PopulatedBeanOrigin, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var shopID *primitive.ObjectID
	if patch.CoffeeShopID != nil {
		sid, err := parseID(*patch.CoffeeShopID)
		if err != nil {
			return nil, err
		}
		if err := s.requireShop(ctx, sid); err != nil {
			return nil, err
		}
		shopID = &sid
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": patch.SetDoc(shopID, s.now())})
	if err != nil {
		return nil, fmt.Errorf("update bean: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperror.ErrBeanNotFound
	}
	return s.get(ctx, oid)
}

func (s *BeanOriginService) Delete(ctx context.Context, id string) (*models.BeanOrigin, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var bean models.BeanOrigin
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&bean); err != nil {
		return nil, notFound(err, apperror.ErrBeanNotFound, "delete bean")
	}
	return &bean, nil
}
