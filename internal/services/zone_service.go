// server/internal/services/zone_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/database"
	"coffee-os-api-server/internal/geo"
	"coffee-os-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ZoneService struct {
	coll  *mongo.Collection
	shops *CoffeeShopService
	now   func() time.Time
}

func NewZoneService(db *mongo.Database, shops *CoffeeShopService) *ZoneService {
	return &ZoneService{coll: db.Collection(database.Zones), shops: shops, now: time.Now}
}

func (s *ZoneService) List(ctx context.Context) ([]models.Zone, error) {
	zones, err := findAll[models.Zone](ctx, s.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

func (s *ZoneService) Get(ctx context.Context, id string) (*models.Zone, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var zone models.Zone
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&zone); err != nil {
		return nil, notFound(err, apperror.ErrZoneNotFound, "get zone")
	}
	return &zone, nil
}

// Create validates the polygon before storing the zone.
func (s *ZoneService) Create(ctx context.Context, zone *models.Zone) error {
	zone.Name = strings.TrimSpace(zone.Name)
	if zone.Location.Type == "" {
		zone.Location.Type = models.GeoTypePolygon
	}
	if err := geo.ValidatePolygon(zone.Location); err != nil {
		return apperror.BadRequest(err.Error())
	}
	zone.ID = primitive.NilObjectID
	now := s.now()
	zone.CreatedAt, zone.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, zone)
	if err != nil {
		if isGeoKeyError(err) {
			return apperror.ErrInvalidZoneShape
		}
		return fmt.Errorf("create zone: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		zone.ID = oid
	}
	return nil
}

func (s *ZoneService) Delete(ctx context.Context, id string) (*models.Zone, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var zone models.Zone
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&zone); err != nil {
		return nil, notFound(err, apperror.ErrZoneNotFound, "delete zone")
	}
	return &zone, nil
}

// CoffeeShops lists the shops located inside the zone.
func (s *ZoneService) CoffeeShops(ctx context.Context, id string) ([]models.CoffeeShop, error) {
	zone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.shops.WithinPolygon(ctx, zone.Location)
}
