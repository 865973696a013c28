package app

import (
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"

	_ "github.com/Nazarious-ucu/weather-push-api/docs"
	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/middleware"
	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/subscription"
	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/users"
	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/weather"
)

func (a *App) newRouter(c *ServiceContainer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), c.M.HTTPMiddleware())

	userHandler := users.NewHandler(c.UserService, a.l)
	subHandler := subscription.NewHandler(c.SubscriptionService, a.l)
	weatherHandler := weather.NewHandler(c.CityService, c.WeatherService, a.l)

	requireAuth := middleware.RequireAuth(c.UserService)

	api := router.Group("/api")
	{
		api.POST("/register/", userHandler.Register)
		api.GET("/verify/:token", userHandler.Verify)
		api.POST("/token/", userHandler.Login)
		api.DELETE("/token/", requireAuth, userHandler.Logout)

		api.GET("/cities/", weatherHandler.ListCities)
		api.GET("/cities/:city/:country/weather/", weatherHandler.GetWeather)
	}

	authed := api.Group("", requireAuth)
	{
		authed.POST("/cities/:city/:country/weather/subscription/", subHandler.Create)
		authed.PUT("/cities/:city/:country/weather/subscription/", subHandler.Update)
		authed.DELETE("/cities/:city/:country/weather/subscription/", subHandler.Delete)
		authed.GET("/subscription/", subHandler.List)
		authed.GET("/subscription/:id", subHandler.Get)
	}

	admin := api.Group("/users", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/", userHandler.List)
		admin.DELETE("/:id", userHandler.Delete)
	}

	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))
	router.GET("/metrics", gin.WrapH(c.M.Handler()))

	return router
}
