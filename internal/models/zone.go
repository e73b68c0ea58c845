// server/internal/models/zone.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Zone is a polygon drawn on the map.
type Zone struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Location  GeoPolygon         `bson:"location" json:"location"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
