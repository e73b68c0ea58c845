// server/internal/api/handlers/bean_origin_handler.go
package handlers

import (
	"net/http"
	"strings"

	"coffee-os-api-server/internal/models"
	"coffee-os-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventBeanCreated = "bean.created"
	EventBeanUpdated = "bean.updated"
	EventBeanDeleted = "bean.deleted"
)

type BeanOriginHandler struct {
	Service *services.BeanOriginService
	Events  Publisher
}

type CreateBeanRequest struct {
	Name         string   `json:"name" binding:"required,notblank"`
	Roaster      string   `json:"roaster" binding:"required,notblank"`
	OriginRegion string   `json:"originRegion"`
	Process      string   `json:"process" binding:"omitempty,process"`
	RoastLevel   string   `json:"roastLevel" binding:"omitempty,roastlevel"`
	Altitude     *float64 `json:"altitude" binding:"omitempty,min=0"`
	PriceCup     *float64 `json:"priceCup" binding:"omitempty,min=0"`
	CoffeeShopID string   `json:"coffeeShopId" binding:"required,objectid"`
}

func (r CreateBeanRequest) model() *models.BeanOrigin {
	// CoffeeShopID is validated by the objectid tag.
	shopID, _ := primitive.ObjectIDFromHex(r.CoffeeShopID)
	return &models.BeanOrigin{
		Name:         strings.TrimSpace(r.Name),
		Roaster:      strings.TrimSpace(r.Roaster),
		OriginRegion: strings.TrimSpace(r.OriginRegion),
		Process:      r.Process,
		RoastLevel:   r.RoastLevel,
		Altitude:     r.Altitude,
		PriceCup:     r.PriceCup,
		CoffeeShopID: shopID,
	}
}

func (h *BeanOriginHandler) ListBeans(c *gin.Context) {
	beans, err := h.Service.List(c.Request.Context(), services.BeanFilter{
		Process:      c.Query("process"),
		RoastLevel:   c.Query("roastLevel"),
		CoffeeShopID: c.Query("coffeeShopId"),
		Query:        strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"beans": beans})
}

func (h *BeanOriginHandler) GetBean(c *gin.Context) {
	bean, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bean": bean})
}

func (h *BeanOriginHandler) CreateBean(c *gin.Context) {
	var req CreateBeanRequest
	if !bindJSON(c, &req) {
		return
	}

	bean, err := h.Service.Create(c.Request.Context(), req.model())
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventBeanCreated, bean)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Bean created successfully",
		"bean":    bean,
	})
}

func (h *BeanOriginHandler) UpdateBean(c *gin.Context) {
	var patch models.BeanOriginPatch
	if !bindJSON(c, &patch) {
		return
	}

	bean, err := h.Service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventBeanUpdated, bean)
	c.JSON(http.StatusOK, gin.H{
		"message": "Bean updated successfully",
		"bean":    bean,
	})
}

func (h *BeanOriginHandler) DeleteBean(c *gin.Context) {
	bean, err := h.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventBeanDeleted, gin.H{"_id": bean.ID, "coffeeShopId": bean.CoffeeShopID})
	c.Status(http.StatusNoContent)
}
