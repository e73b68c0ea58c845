// server/internal/models/coffee_shop.go
package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vibes a coffee shop can be tagged with.
var Vibes = []string{"Focus", "Social", "Date", "Fast", "Chill"}

const DefaultRating = 5.0

type Amenities struct {
	HasWifi         bool `bson:"hasWifi" json:"hasWifi" yaml:"hasWifi"`
	HasPowerOutlets bool `bson:"hasPowerOutlets" json:"hasPowerOutlets" yaml:"hasPowerOutlets"`
	IsPetFriendly   bool `bson:"isPetFriendly" json:"isPetFriendly" yaml:"isPetFriendly"`
}

type CoffeeShop struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    GeoPoint           `bson:"location" json:"location"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Vibe        string             `bson:"vibe,omitempty" json:"vibe,omitempty"`
	Amenities   Amenities          `bson:"amenities" json:"amenities"`
	Rating      float64            `bson:"rating" json:"rating"`
	Images      []string           `bson:"images" json:"images"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize trims text fields, lowercases the slug (deriving it from the name
// when empty) and applies defaults.
func (s *CoffeeShop) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	if strings.TrimSpace(s.Slug) == "" {
		s.Slug = Slugify(s.Name)
	} else {
		s.Slug = Slugify(s.Slug)
	}
	s.Location.Normalize()
	if s.Rating == 0 {
		s.Rating = DefaultRating
	}
	if s.Images == nil {
		s.Images = []string{}
	}
}

type AmenitiesPatch struct {
	HasWifi         *bool `json:"hasWifi"`
	HasPowerOutlets *bool `json:"hasPowerOutlets"`
	IsPetFriendly   *bool `json:"isPetFriendly"`
}

// CoffeeShopPatch is a partial update; nil fields are left untouched.
type CoffeeShopPatch struct {
	Name        *string         `json:"name" binding:"omitempty,notblank"`
	Slug        *string         `json:"slug" binding:"omitempty,notblank"`
	Description *string         `json:"description"`
	Location    *GeoPoint       `json:"location"`
	Address     *string         `json:"address"`
	Vibe        *string         `json:"vibe" binding:"omitempty,vibe"`
	Amenities   *AmenitiesPatch `json:"amenities"`
	Rating      *float64        `json:"rating" binding:"omitempty,min=1,max=5"`
	Images      []string        `json:"images"`
}

// SetDoc builds the $set document for the patch.
func (p CoffeeShopPatch) SetDoc(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Slug != nil {
		set["slug"] = Slugify(*p.Slug)
	}
	if p.Description != nil {
		set["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Location != nil {
		loc := *p.Location
		loc.Normalize()
		set["location"] = loc
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Vibe != nil {
		set["vibe"] = *p.Vibe
	}
	if p.Amenities != nil {
		if p.Amenities.HasWifi != nil {
			set["amenities.hasWifi"] = *p.Amenities.HasWifi
		}
		if p.Amenities.HasPowerOutlets != nil {
			set["amenities.hasPowerOutlets"] = *p.Amenities.HasPowerOutlets
		}
		if p.Amenities.IsPetFriendly != nil {
			set["amenities.isPetFriendly"] = *p.Amenities.IsPetFriendly
		}
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	return set
}

// Slugify transliterates s to lowercase ASCII words joined by dashes. Letters
// with no transliteration are kept as they are, so only input without any
// letter or digit yields "".
func Slugify(s string) string {
	if out := slug.Make(s); out != "" {
		return out
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}
