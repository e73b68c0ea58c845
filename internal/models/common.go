// server/internal/models/common.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	GeoTypePoint   = "Point"
	GeoTypePolygon = "Polygon"
)

// GeoPoint is a GeoJSON Point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type" binding:"omitempty,eq=Point"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" binding:"required,lnglat"`
}

// NewGeoPoint builds a Point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: GeoTypePoint, Coordinates: []float64{lng, lat}}
}

// Normalize fills the default type.
func (p *GeoPoint) Normalize() {
	if p.Type == "" {
		p.Type = GeoTypePoint
	}
}

// GeoPolygon is a GeoJSON Polygon: a list of linear rings, the first one being
// the exterior ring.
type GeoPolygon struct {
	Type        string        `bson:"type" json:"type"`
	Coordinates [][][]float64 `bson:"coordinates" json:"coordinates"`
}

// ShopRef is the populated form of a coffee shop reference.
type ShopRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}
