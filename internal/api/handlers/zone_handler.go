// server/internal/api/handlers/zone_handler.go
package handlers

import (
	"net/http"

	"coffee-os-api-server/internal/models"
	"coffee-os-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	EventZoneCreated = "zone.created"
	EventZoneDeleted = "zone.deleted"
)

type ZoneHandler struct {
	Service *services.ZoneService
	Events  Publisher
}

type CreateZoneRequest struct {
	Name     string            `json:"name" binding:"required,notblank"`
	Location models.GeoPolygon `json:"location"`
}

func (h *ZoneHandler) ListZones(c *gin.Context) {
	zones, err := h.Service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req CreateZoneRequest
	if !bindJSON(c, &req) {
		return
	}

	zone := &models.Zone{Name: req.Name, Location: req.Location}
	if err := h.Service.Create(c.Request.Context(), zone); err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventZoneCreated, zone)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Zone created successfully",
		"zone":    zone,
	})
}

func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	zone, err := h.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	publisher(h.Events).Publish(EventZoneDeleted, gin.H{"_id": zone.ID})
	c.Status(http.StatusNoContent)
}

// ListZoneCoffeeShops returns the coffee shops inside the zone polygon.
func (h *ZoneHandler) ListZoneCoffeeShops(c *gin.Context) {
	shops, err := h.Service.CoffeeShops(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coffeeShops": shops})
}
