// server/internal/geo/geo.go

// Package geo validates GeoJSON payloads and parses geo query parameters.
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"coffee-os-api-server/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

const polygonSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "coordinates"],
  "properties": {
    "type": {"enum": ["Polygon"]},
    "coordinates": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "array",
        "minItems": 4,
        "items": {
          "type": "array",
          "minItems": 2,
          "maxItems": 3,
          "items": {"type": "number"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func polygon() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(polygonSchema))
	})
	return schema, schemaErr
}

// ValidatePolygon checks p against the GeoJSON Polygon shape, coordinate
// ranges, ring closure and the number of distinct vertices per ring.
func ValidatePolygon(p models.GeoPolygon) error {
	s, err := polygon()
	if err != nil {
		return fmt.Errorf("load polygon schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(p))
	if err != nil {
		return fmt.Errorf("validate polygon: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.New("invalid polygon: " + strings.Join(msgs, "; "))
	}

	for i, ring := range p.Coordinates {
		for _, pos := range ring {
			if !inRange(pos[0], pos[1]) {
				return fmt.Errorf("invalid polygon: ring %d has position %v out of range", i, pos)
			}
		}
		first, last := ring[0], ring[len(ring)-1]
		if first[0] != last[0] || first[1] != last[1] {
			return fmt.Errorf("invalid polygon: ring %d is not closed", i)
		}
		if n := distinctVertices(ring); n < 3 {
			return fmt.Errorf("invalid polygon: ring %d has %d distinct vertices, need at least 3", i, n)
		}
	}
	return nil
}

func distinctVertices(ring [][]float64) int {
	seen := make(map[[2]float64]struct{}, len(ring))
	for _, pos := range ring {
		seen[[2]float64{pos[0], pos[1]}] = struct{}{}
	}
	return len(seen)
}

// ParseLngLat parses "lng,lat" into a Point.
func ParseLngLat(s string) (models.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, fmt.Errorf("expected lng,lat, got %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("bad longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("bad latitude: %w", err)
	}
	if !inRange(lng, lat) {
		return models.GeoPoint{}, fmt.Errorf("position %v,%v out of range", lng, lat)
	}
	return models.NewGeoPoint(lng, lat), nil
}

func inRange(lng, lat float64) bool {
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}
