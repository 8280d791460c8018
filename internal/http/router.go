// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxihub/internal/config"
	"taxihub/internal/http/handlers"
	"taxihub/internal/http/middleware"
	"taxihub/internal/modules/booking"
	"taxihub/internal/modules/company"
	"taxihub/internal/modules/identity"
	"taxihub/internal/types"
)

type RouterDeps struct {
	Users     *identity.Service
	Bookings  *booking.Service
	Companies *company.Service
	Verifier  middleware.TokenVerifier
	Booking   config.BookingConfig
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	userHandler := handlers.NewUserHandler(deps.Users)
	bookingHandler := handlers.NewBookingHandler(deps.Bookings, deps.Booking)
	companyHandler := handlers.NewCompanyHandler(deps.Companies)

	r.POST("/api/users", userHandler.Register)
	r.POST("/api/login", userHandler.Login)
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authed := r.Group("/api", middleware.Auth(deps.Verifier))

	authed.GET("/users/:id", userHandler.Get)
	authed.PATCH("/users/:id", userHandler.Edit)
	authed.GET("/users/:id/bookings", userHandler.Bookings)

	authed.POST("/companies", companyHandler.Create)

	authed.POST("/bookings", bookingHandler.Create)
	authed.GET("/bookings/:id", bookingHandler.Get)
	authed.PATCH("/bookings/:id", bookingHandler.Edit)
	authed.POST("/bookings/:id/release", bookingHandler.Release)

	admins := authed.Group("", middleware.RequireRole(types.RoleCompanyAdmin))
	admins.GET("/users", userHandler.List)
	admins.GET("/dispatch/unallocated", bookingHandler.ListUnallocated)
	admins.POST("/bookings/:id/claim", bookingHandler.Claim)
	admins.POST("/companies/:id/drivers", companyHandler.AddDriver)

	staff := authed.Group("", middleware.RequireRole(types.RoleCompanyAdmin, types.RoleDriver))
	staff.GET("/companies/:id", companyHandler.Get)
	staff.GET("/companies/:id/bookings", companyHandler.Bookings)
	staff.GET("/companies/:id/drivers", companyHandler.Drivers)
	staff.DELETE("/companies/:id/drivers/:driverID", companyHandler.RemoveDriver)

	return r
}
