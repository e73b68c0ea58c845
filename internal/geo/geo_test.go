package geo

import (
	"testing"

	"coffee-os-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() models.GeoPolygon {
	return models.GeoPolygon{
		Type: "Polygon",
		Coordinates: [][][]float64{{
			{-58.45, -34.62}, {-58.35, -34.62}, {-58.35, -34.55}, {-58.45, -34.55}, {-58.45, -34.62},
		}},
	}
}

func TestValidatePolygon(t *testing.T) {
	require.NoError(t, ValidatePolygon(square()))

	wrongType := square()
	wrongType.Type = "Point"
	assert.ErrorContains(t, ValidatePolygon(wrongType), "invalid polygon")

	open := square()
	open.Coordinates[0][4] = []float64{-58.40, -34.60}
	assert.ErrorContains(t, ValidatePolygon(open), "not closed")

	short := models.GeoPolygon{Type: "Polygon", Coordinates: [][][]float64{{{0, 0}, {1, 1}, {0, 0}}}}
	assert.Error(t, ValidatePolygon(short))

	outOfRange := square()
	outOfRange.Coordinates[0][1] = []float64{200, -34.62}
	assert.ErrorContains(t, ValidatePolygon(outOfRange), "out of range")

	assert.Error(t, ValidatePolygon(models.GeoPolygon{Type: "Polygon"}))

	samePoint := models.GeoPolygon{Type: "Polygon", Coordinates: [][][]float64{{{1, 1}, {1, 1}, {1, 1}, {1, 1}}}}
	assert.ErrorContains(t, ValidatePolygon(samePoint), "1 distinct vertices")

	line := models.GeoPolygon{Type: "Polygon", Coordinates: [][][]float64{{{0, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 0}}}}
	assert.ErrorContains(t, ValidatePolygon(line), "2 distinct vertices")
}

func TestParseLngLat(t *testing.T) {
	p, err := ParseLngLat("-58.38, -34.60")
	require.NoError(t, err)
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, []float64{-58.38, -34.60}, p.Coordinates)

	for _, in := range []string{"", "1", "a,b", "1,2,3", "190,0", "0,95"} {
		_, err := ParseLngLat(in)
		assert.Error(t, err, in)
	}
}
