package services

import (
	"context"
	"testing"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const zonesNS = "test.zones"

var palermo = models.GeoPolygon{
	Type: models.GeoTypePolygon,
	Coordinates: [][][]float64{{
		{-58.44, -34.59}, {-58.41, -34.59}, {-58.41, -34.57}, {-58.44, -34.57}, {-58.44, -34.59},
	}},
}

func TestZoneServiceCreate(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("stores valid polygon", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		zone := &models.Zone{Name: " Palermo ", Location: models.GeoPolygon{Coordinates: palermo.Coordinates}}

		require.NoError(t, svc.Create(ctx, zone))
		assert.Equal(t, "Palermo", zone.Name)
		assert.Equal(t, models.GeoTypePolygon, zone.Location.Type)
		assert.False(t, zone.ID.IsZero())
	})

	mt.Run("rejects open ring", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		open := models.GeoPolygon{Coordinates: [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}}

		err := svc.Create(ctx, &models.Zone{Name: "Open", Location: open})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.StatusCode)
	})

	mt.Run("shape refused by the geo index", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Code:    16755,
			Message: "Can't extract geo keys: Edges 0 and 2 cross.",
		}))
		bowtie := models.GeoPolygon{Coordinates: [][][]float64{{{0, 0}, {1, 1}, {1, 0}, {0, 1}, {0, 0}}}}

		err := svc.Create(ctx, &models.Zone{Name: "Bowtie", Location: bowtie})
		assert.Equal(t, apperror.ErrInvalidZoneShape, err)
	})

	mt.Run("other write errors stay server errors", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Code: 2, Message: "boom"}))

		err := svc.Create(ctx, &models.Zone{Name: "Palermo", Location: palermo})
		require.Error(t, err)
		_, ok := apperror.As(err)
		assert.False(t, ok)
	})
}

func TestZoneServiceList(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("lists zones", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		zone := models.Zone{ID: primitive.NewObjectID(), Name: "Palermo", Location: palermo}
		mt.AddMockResponses(cursor(zonesNS, toDoc(t, zone)))

		zones, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, zones, 1)
		assert.Equal(t, palermo.Coordinates, zones[0].Location.Coordinates)
	})
}

func TestZoneServiceCoffeeShops(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("queries shops inside the polygon", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		zone := models.Zone{ID: primitive.NewObjectID(), Name: "Palermo", Location: palermo}
		mt.AddMockResponses(
			cursor(zonesNS, toDoc(t, zone)),
			cursor(shopsNS, toDoc(t, sampleShop("Cuervo"))),
		)

		shops, err := svc.CoffeeShops(ctx, zone.ID.Hex())
		require.NoError(t, err)
		require.Len(t, shops, 1)

		mt.GetStartedEvent() // zone lookup
		evt := mt.GetStartedEvent()
		geometry := evt.Command.Lookup("filter", "location", "$geoWithin", "$geometry").Document()
		assert.Equal(t, "Polygon", geometry.Lookup("type").StringValue())
	})

	mt.Run("unknown zone", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		mt.AddMockResponses(cursor(zonesNS))

		_, err := svc.CoffeeShops(ctx, primitive.NewObjectID().Hex())
		assert.Equal(t, apperror.ErrZoneNotFound, err)
	})
}

func TestZoneServiceDelete(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("deletes", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		zone := models.Zone{ID: primitive.NewObjectID(), Name: "Palermo", Location: palermo}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(t, zone)}))

		got, err := svc.Delete(ctx, zone.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Palermo", got.Name)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		svc := NewZoneService(mt.DB, NewCoffeeShopService(mt.DB))
		_, err := svc.Delete(ctx, "zzz")
		assert.Equal(t, apperror.ErrInvalidID, err)
	})
}
