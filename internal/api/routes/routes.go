// server/internal/api/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"garden-application-api-server/config"
	"garden-application-api-server/internal/api/handlers"
	"garden-application-api-server/internal/api/middleware"
	"garden-application-api-server/internal/auth"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/metrics"
	"garden-application-api-server/internal/plot"
	"garden-application-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the components the router wires into handlers.
type Deps struct {
	Config config.Config
	Store  docstore.Store
	Plots  *plot.Manager
	Issuer *auth.Issuer
	Hub    *socket.Hub
	// Photos is nil when object storage is not configured.
	Photos handlers.PhotoStore
	Logger *zap.Logger
}

// SetupRouter builds the gin engine with every API route.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(cors.New(corsConfig(d.Config.CORS)))

	authHandler := &handlers.AuthHandler{Store: d.Store, Issuer: d.Issuer, Logger: d.Logger}
	pinHandler := &handlers.PinHandler{Store: d.Store, Plots: d.Plots, Photos: d.Photos, Hub: d.Hub, Logger: d.Logger}
	plotHandler := &handlers.PlotHandler{Store: d.Store, Plots: d.Plots, Hub: d.Hub, Logger: d.Logger}
	plantHandler := &handlers.PlantHandler{Photos: d.Photos}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Issuer: d.Issuer, Logger: d.Logger}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireUser := middleware.Authenticate(d.Issuer)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.OptionalAuthenticate(d.Issuer))
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)
		apiV1.GET("/plants", plantHandler.ListPlants)

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/sign-up", authHandler.SignUp)
			authRoutes.POST("/sign-in", authHandler.SignIn)
			authRoutes.GET("/me", requireUser, authHandler.Me)
		}

		pins := apiV1.Group("/pins")
		{
			pins.GET("", pinHandler.ListPins)
			pins.GET("/:id", pinHandler.GetPin)
			pins.POST("", requireUser, pinHandler.CreatePin)
			pins.DELETE("/:id", requireUser, pinHandler.DeletePin)
			pins.POST("/:id/photo", requireUser, pinHandler.UploadPhoto)
		}

		plots := apiV1.Group("/plots/:id")
		{
			plots.GET("", plotHandler.GetPlot)
			plots.GET("/layout", plotHandler.GetLayout)
			plots.POST("/cells/:row/:col/toggle", requireUser, plotHandler.ToggleCell)
			plots.PUT("/cells/:row/:col", requireUser, plotHandler.UpdateCell)
		}
	}

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
