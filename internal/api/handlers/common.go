// server/internal/api/handlers/common.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Publisher fans change events out to live subscribers.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// Notifier delivers an event to the live connections of one user.
type Notifier interface {
	Send(userID, eventType string, data interface{})
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func publisher(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// bindJSON binds the body into obj, pushing a 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperror.BadRequest(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body."
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "lnglat":
		return field + " must be a [longitude, latitude] pair"
	case "objectid":
		return field + " must be a valid id"
	case "vibe":
		return field + " must be one of " + strings.Join(models.Vibes, ", ")
	case "process":
		return field + " must be one of " + strings.Join(models.Processes, ", ")
	case "roastlevel":
		return field + " must be one of " + strings.Join(models.RoastLevels, ", ")
	case "eq":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
