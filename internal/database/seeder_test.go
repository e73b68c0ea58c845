package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const seedYAML = `
coffeeShops:
  - name: Café Tortoni
    address: Av. de Mayo 825
    vibe: Social
    location: [-58.3787, -34.6087]
    amenities:
      hasWifi: true
  - name: LAB Tostadores
    slug: lab
    location: [-58.4380, -34.5868]
    rating: 4.8
`

func writeSeed(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	f, err := LoadSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, f.CoffeeShops, 2)

	shops := f.Shops(time.Now())
	assert.Equal(t, "cafe-tortoni", shops[0].Slug)
	assert.True(t, shops[0].Amenities.HasWifi)
	assert.Equal(t, 5.0, shops[0].Rating)
	assert.Equal(t, []float64{-58.3787, -34.6087}, shops[0].Location.Coordinates)
	assert.Equal(t, "lab", shops[1].Slug)
	assert.Equal(t, 4.8, shops[1].Rating)

	_, err = LoadSeedFile(writeSeed(t, "coffeeShops:\n  - name: Nowhere\n"))
	assert.ErrorContains(t, err, "location")

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedAdmin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("skips without password", func(mt *mtest.T) {
		require.NoError(t, SeedAdmin(ctx, mt.DB, "admin@coffee.test", ""))
	})

	mt.Run("skips when present", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))
		require.NoError(t, SeedAdmin(ctx, mt.DB, "admin@coffee.test", "pw"))
	})

	mt.Run("inserts admin", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)
		require.NoError(t, SeedAdmin(ctx, mt.DB, " Admin@Coffee.test ", "pw"))

		mt.GetStartedEvent() // count
		insert := mt.GetStartedEvent()
		require.NotNil(t, insert)
		assert.Equal(t, "insert", insert.CommandName)
		doc := insert.Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(t, "admin@coffee.test", doc.Lookup("email").StringValue())
		assert.Equal(t, "admin", doc.Lookup("role").StringValue())
	})
}

func TestSeedCoffeeShops(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	path := writeSeed(t, seedYAML)

	mt.Run("inserts into empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.coffeeshops", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)
		n, err := SeedCoffeeShops(ctx, mt.DB, path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	mt.Run("leaves populated collection alone", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.coffeeshops", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}))
		n, err := SeedCoffeeShops(ctx, mt.DB, path)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	mt.Run("no seed file configured", func(mt *mtest.T) {
		n, err := SeedCoffeeShops(ctx, mt.DB, "")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestIndexModels(t *testing.T) {
	idx := IndexModels()
	require.Contains(t, idx, CoffeeShops)
	require.Contains(t, idx, Zones)

	var names []string
	for _, m := range idx[CoffeeShops] {
		names = append(names, *m.Options.Name)
	}
	assert.ElementsMatch(t, []string{"slug_unique", "location_2dsphere", "vibe"}, names)
	assert.True(t, *idx[Users][0].Options.Unique)
}
