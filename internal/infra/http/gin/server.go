package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staycal/internal/infra/config"
	"staycal/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Check(c *gin.Context)
}

type PricingHTTP interface {
	Quote(c *gin.Context)
}

type CalendarHTTP interface {
	Month(c *gin.Context)
}

type BookingHTTP interface {
	Confirm(c *gin.Context)
	Release(c *gin.Context)
}

type AdminHTTP interface {
	PutConfig(c *gin.Context)
	GetConfig(c *gin.Context)
	PostSeason(c *gin.Context)
	ListSeasons(c *gin.Context)
	DisableSeason(c *gin.Context)
	PatchDay(c *gin.Context)
	ClearDay(c *gin.Context)
	Regenerate(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Pricing      PricingHTTP
	Calendar     CalendarHTTP
	Booking      BookingHTTP
	Admin        AdminHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.Check)
	}
	if h.Pricing != nil {
		api.GET("/properties/:id/quote", h.Pricing.Quote)
	}
	if h.Calendar != nil {
		api.GET("/properties/:id/calendar/:month", h.Calendar.Month)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Confirm)
		api.POST("/bookings/:id/release", h.Booking.Release)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin/properties/:id")
		adminGroup.PUT("/pricing-config", h.Admin.PutConfig)
		adminGroup.GET("/pricing-config", h.Admin.GetConfig)
		adminGroup.POST("/seasons", h.Admin.PostSeason)
		adminGroup.GET("/seasons", h.Admin.ListSeasons)
		adminGroup.DELETE("/seasons/:seasonId", h.Admin.DisableSeason)
		adminGroup.PUT("/days/:date", h.Admin.PatchDay)
		adminGroup.DELETE("/days/:date", h.Admin.ClearDay)
		adminGroup.POST("/regenerate", h.Admin.Regenerate)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
