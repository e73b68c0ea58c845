// server/internal/api/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	Mongo *mongo.Client
	// Redis is optional.
	Redis *redis.Client
}

func (h *HealthHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to CoffeeOS")
}

// Health pings the backing stores.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
		checks["mongo"] = err.Error()
		healthy = false
	} else {
		checks["mongo"] = "ok"
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
