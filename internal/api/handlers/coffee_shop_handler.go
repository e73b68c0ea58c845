// server/internal/api/handlers/coffee_shop_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/geo"
	"coffee-os-api-server/internal/metrics"
	"coffee-os-api-server/internal/models"
	"coffee-os-api-server/internal/s3"
	"coffee-os-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	EventCoffeeShopCreated = "coffeeShop.created"
	EventCoffeeShopUpdated = "coffeeShop.updated"
	EventCoffeeShopDeleted = "coffeeShop.deleted"
)

const (
	// maxImageSize caps uploaded images at 5 MiB.
	maxImageSize = 5 << 20
	// maxImageBody leaves room for the multipart envelope around the image.
	maxImageBody = maxImageSize + 64<<10
	sniffLen     = 512
)

var errImageTooLarge = apperror.BadRequest("Image must be 5MB or smaller.")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type CoffeeShopHandler struct {
	Service *services.CoffeeShopService
	Events  Publisher
	// Uploader is nil when S3 is not configured.
	Uploader ImageUploader
}

type CreateCoffeeShopRequest struct {
	Name        string           `json:"name" binding:"required,notblank"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Location    models.GeoPoint  `json:"location"`
	Address     string           `json:"address"`
	Vibe        string           `json:"vibe" binding:"omitempty,vibe"`
	Amenities   models.Amenities `json:"amenities"`
	Rating      float64          `json:"rating" binding:"omitempty,min=1,max=5"`
	Images      []string         `json:"images"`
}

func (r CreateCoffeeShopRequest) model() *models.CoffeeShop {
	return &models.CoffeeShop{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Location:    r.Location,
		Address:     strings.TrimSpace(r.Address),
		Vibe:        r.Vibe,
		Amenities:   r.Amenities,
		Rating:      r.Rating,
		Images:      r.Images,
	}
}

func (h *CoffeeShopHandler) ListCoffeeShops(c *gin.Context) {
	filter := services.ShopFilter{
		Vibe:  c.Query("vibe"),
		Query: strings.TrimSpace(c.Query("q")),
	}
	if near := c.Query("near"); near != "" {
		point, err := geo.ParseLngLat(near)
		if err != nil {
			_ = c.Error(apperror.BadRequest(err.Error()))
			return
		}
		filter.Near = &point
	}
	if raw := c.Query("maxDistance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			_ = c.Error(apperror.BadRequest("maxDistance must be a positive number of metres."))
			return
		}
		filter.MaxDistance = d
	}

	shops, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coffeeShops": shops})
}

func (h *CoffeeShopHandler) GetCoffeeShop(c *gin.Context) {
	shop, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coffeeShop": shop})
}

func (h *CoffeeShopHandler) CreateCoffeeShop(c *gin.Context) {
	var req CreateCoffeeShopRequest
	if !bindJSON(c, &req) {
		return
	}

	shop := req.model()
	if err := h.Service.Create(c.Request.Context(), shop); err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventCoffeeShopCreated, shop)
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Coffee Shop created successfully",
		"coffeeShop": shop,
	})
}

func (h *CoffeeShopHandler) UpdateCoffeeShop(c *gin.Context) {
	var patch models.CoffeeShopPatch
	if !bindJSON(c, &patch) {
		return
	}

	shop, err := h.Service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventCoffeeShopUpdated, shop)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Coffee Shop updated successfully",
		"coffeeShop": shop,
	})
}

func (h *CoffeeShopHandler) DeleteCoffeeShop(c *gin.Context) {
	shop, err := h.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventCoffeeShopDeleted, gin.H{"_id": shop.ID})
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart "image" file in S3 and appends its URL to
// the shop.
func (h *CoffeeShopHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		_ = c.Error(apperror.ErrUploadsDisabled)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Service.Get(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBody)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(errImageTooLarge)
			return
		}
		_ = c.Error(apperror.BadRequest("An image file is required in the 'image' field."))
		return
	}
	if fileHeader.Size > maxImageSize {
		_ = c.Error(errImageTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer file.Close()

	// The part's Content-Type header is client supplied; trust the bytes.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = c.Error(err)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		_ = c.Error(apperror.BadRequest("Image must be a JPEG, PNG or WebP file."))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = c.Error(err)
		return
	}

	url, err := h.Uploader.UploadFile(ctx, file, s3.ShopImageKey(id, fileHeader.Filename), contentType)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		_ = c.Error(err)
		return
	}
	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()

	shop, err := h.Service.AddImage(ctx, id, url)
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventCoffeeShopUpdated, shop)
	c.JSON(http.StatusCreated, gin.H{"coffeeShop": shop})
}
