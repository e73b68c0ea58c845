// server/internal/validation/validation.go

// Package validation registers the domain binding tags on gin's validator.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"coffee-os-api-server/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterWithGin installs the custom tags on gin's default validator engine.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"lnglat":     lngLat,
		"notblank":   notBlank,
		"objectid":   objectID,
		"vibe":       oneOf(models.Vibes),
		"process":    oneOf(models.Processes),
		"roastlevel": oneOf(models.RoastLevels),
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q: %w", tag, err)
		}
	}
	return nil
}

// lngLat accepts a [longitude, latitude] pair.
func lngLat(fl validator.FieldLevel) bool {
	coords, ok := fl.Field().Interface().([]float64)
	if !ok || len(coords) != 2 {
		return false
	}
	return coords[0] >= -180 && coords[0] <= 180 && coords[1] >= -90 && coords[1] <= 90
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func objectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}
