// README: HTTP route table. Everything under /api requires a valid token;
// per-route role gates mirror the lifecycle actor rules.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ridedispatch/internal/auth"
	"ridedispatch/internal/http/handlers"
	"ridedispatch/internal/http/middleware"
	"ridedispatch/internal/modules/address"
	"ridedispatch/internal/modules/dispatch"
	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/modules/user"
)

// Deps is everything the route table needs, wired by main.
type Deps struct {
	Auth           *auth.Manager
	Engine         *dispatch.Engine
	Services       *service.Service
	Drivers        *driver.Service
	Users          user.Store
	Addresses      address.Store
	NearbyRadiusKm float64
	Log            *logrus.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.RequestLogger(d.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	serviceH := handlers.NewServiceHandler(d.Engine, d.Services, d.Drivers, d.Addresses)
	driverH := handlers.NewDriverHandler(d.Drivers, d.NearbyRadiusKm)
	addressH := handlers.NewAddressHandler(d.Addresses)
	userH := handlers.NewUserHandler(d.Users, d.Auth)

	api := r.Group("/api", middleware.Auth(d.Auth))

	svc := api.Group("/services")
	svc.POST("", middleware.RequireRole(user.RoleClient), serviceH.Create)
	svc.GET("", serviceH.List)
	svc.GET("/:id", serviceH.Get)
	svc.POST("/:id/start", middleware.RequireRole(user.RoleDriver), serviceH.Start)
	svc.POST("/:id/complete", middleware.RequireRole(user.RoleDriver), serviceH.Complete)
	svc.POST("/:id/cancel", middleware.RequireRole(user.RoleClient, user.RoleDriver), serviceH.Cancel)

	drv := api.Group("/drivers")
	drv.POST("", middleware.RequireRole(user.RoleDriver), driverH.Register)
	drv.GET("/nearby", driverH.Nearby)
	drv.GET("/:id", driverH.Get)
	drv.PUT("/:id/location", middleware.RequireRole(user.RoleDriver), driverH.UpdateLocation)

	addr := api.Group("/addresses")
	addr.POST("", addressH.Create)
	addr.GET("", addressH.List)

	usr := api.Group("/users", middleware.RequireRole(user.RoleAdmin))
	usr.POST("", userH.Create)
	usr.GET("", userH.List)
	usr.GET("/:id", userH.Get)

	return r
}
