// server/internal/models/bean_origin.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	Processes   = []string{"Washed", "Natural", "Honey", "Anaerobic", "Experimental"}
	RoastLevels = []string{"Light", "Medium", "Dark"}
)

type BeanOrigin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Roaster      string             `bson:"roaster" json:"roaster"`
	OriginRegion string             `bson:"originRegion,omitempty" json:"originRegion,omitempty"`
	Process      string             `bson:"process,omitempty" json:"process,omitempty"`
	RoastLevel   string             `bson:"roastLevel,omitempty" json:"roastLevel,omitempty"`
	Altitude     *float64           `bson:"altitude,omitempty" json:"altitude,omitempty"`
	PriceCup     *float64           `bson:"priceCup,omitempty" json:"priceCup,omitempty"`
	CoffeeShopID primitive.ObjectID `bson:"coffeeShopId" json:"coffeeShopId"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedBeanOrigin is a bean with its coffee shop reference resolved.
// CoffeeShop is nil when the referenced shop no longer exists.
type PopulatedBeanOrigin struct {
	BeanOrigin `bson:",inline"`
	CoffeeShop *ShopRef `bson:"coffeeShop,omitempty" json:"coffeeShopId"`
}

// BeanOriginPatch is a partial update; nil fields are left untouched.
type BeanOriginPatch struct {
	Name         *string  `json:"name" binding:"omitempty,notblank"`
	Roaster      *string  `json:"roaster" binding:"omitempty,notblank"`
	OriginRegion *string  `json:"originRegion"`
	Process      *string  `json:"process" binding:"omitempty,process"`
	RoastLevel   *string  `json:"roastLevel" binding:"omitempty,roastlevel"`
	Altitude     *float64 `json:"altitude" binding:"omitempty,min=0"`
	PriceCup     *float64 `json:"priceCup" binding:"omitempty,min=0"`
	CoffeeShopID *string  `json:"coffeeShopId" binding:"omitempty,objectid"`
}

// SetDoc builds the $set document for the patch. shopID is the already
// parsed CoffeeShopID, if any.
func (p BeanOriginPatch) SetDoc(shopID *primitive.ObjectID, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Roaster != nil {
		set["roaster"] = strings.TrimSpace(*p.Roaster)
	}
	if p.OriginRegion != nil {
		set["originRegion"] = strings.TrimSpace(*p.OriginRegion)
	}
	if p.Process != nil {
		set["process"] = *p.Process
	}
	if p.RoastLevel != nil {
		set["roastLevel"] = *p.RoastLevel
	}
	if p.Altitude != nil {
		set["altitude"] = *p.Altitude
	}
	if p.PriceCup != nil {
		set["priceCup"] = *p.PriceCup
	}
	if shopID != nil {
		set["coffeeShopId"] = *shopID
	}
	return set
}
