// server/internal/api/routes/routes.go
package routes

import (
	"coffee-os-api-server/internal/api/handlers"
	"coffee-os-api-server/internal/api/middleware"
	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/auth"
	"coffee-os-api-server/internal/models"
	"coffee-os-api-server/internal/services"
	"coffee-os-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Dependencies are the components the router wires into its handlers.
type Dependencies struct {
	DB          *mongo.Database
	Mongo       *mongo.Client
	Redis       *redis.Client
	Tokens      *auth.TokenManager
	Denylist    auth.Denylist
	Uploader    handlers.ImageUploader
	Hub         *socket.Hub
	Logger      *zap.Logger
	CORSOrigins []string
}

// SetupRouter builds the gin engine with every route mounted under /api/v1.
func SetupRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORS(deps.CORSOrigins),
		middleware.ErrorHandler(log),
	)
	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperror.NotFound("Route not found."))
	})

	shopService := services.NewCoffeeShopService(deps.DB)
	beanService := services.NewBeanOriginService(deps.DB, shopService)
	zoneService := services.NewZoneService(deps.DB, shopService)
	userService := services.NewUserService(deps.DB)
	authService := services.NewAuthService(deps.DB, deps.Tokens, deps.Denylist)

	var (
		events   handlers.Publisher
		sessions handlers.Notifier
	)
	if deps.Hub != nil {
		events, sessions = deps.Hub, deps.Hub
	}

	healthHandler := &handlers.HealthHandler{Mongo: deps.Mongo, Redis: deps.Redis}
	authHandler := &handlers.AuthHandler{Auth: authService, Users: userService, Sessions: sessions}
	shopHandler := &handlers.CoffeeShopHandler{Service: shopService, Events: events, Uploader: deps.Uploader}
	beanHandler := &handlers.BeanOriginHandler{Service: beanService, Events: events}
	zoneHandler := &handlers.ZoneHandler{Service: zoneService, Events: events}

	router.GET("/", healthHandler.Welcome)
	router.GET("/healthz", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		if deps.Hub != nil {
			wsHandler := &handlers.WebSocketHandler{Hub: deps.Hub, Verifier: authService}
			apiV1.GET("/ws", wsHandler.ServeWs)
		}

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(authService))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/me", authHandler.Me)
			protected.GET("/users", middleware.Authorize(models.RoleAdmin), authHandler.ListUsers)

			shops := protected.Group("/coffee-shops")
			{
				shops.GET("", shopHandler.ListCoffeeShops)
				shops.POST("", shopHandler.CreateCoffeeShop)
				shops.GET("/:id", shopHandler.GetCoffeeShop)
				shops.PATCH("/:id", shopHandler.UpdateCoffeeShop)
				shops.DELETE("/:id", shopHandler.DeleteCoffeeShop)
				shops.POST("/:id/images", shopHandler.UploadImage)
			}

			beans := protected.Group("/beans")
			{
				beans.GET("", beanHandler.ListBeans)
				beans.POST("", beanHandler.CreateBean)
				beans.GET("/:id", beanHandler.GetBean)
				beans.PATCH("/:id", beanHandler.UpdateBean)
				beans.DELETE("/:id", beanHandler.DeleteBean)
			}

			zones := protected.Group("/zones")
			{
				zones.GET("", zoneHandler.ListZones)
				zones.POST("", zoneHandler.CreateZone)
				zones.DELETE("/:id", zoneHandler.DeleteZone)
				zones.GET("/:id/coffee-shops", zoneHandler.ListZoneCoffeeShops)
			}
		}
	}

	return router
}
