package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/export"
	"github.com/geocoder89/notesapp/internal/http/handlers"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Notes    handlers.NotesRepository
	Accounts interface {
		handlers.Accounts
		middlewares.UserLookup
	}
	Sessions interface {
		handlers.SessionIssuer
		middlewares.SessionResolver
	}
	Exports *export.Service
	Checks  map[string]handlers.Check
	// ShuttingDown flips readiness to 503 while the server drains.
	ShuttingDown func() bool

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// AuthLimiter throttles login and register. Nil disables it.
	AuthLimiter *middlewares.RateLimiter
	Now         func() time.Time
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.Config.OTelEnabled {
		r.Use(otelgin.Middleware("notes-api"))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(d.Config.IsProd()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))

	// health
	health := handlers.NewHealthHandler(d.Checks, d.ShuttingDown)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	exports := d.Exports
	if exports == nil {
		exports = export.Default()
	}

	authHandler := handlers.NewAuthHandler(d.Accounts, d.Sessions, d.Prom, d.Config)
	notesHandler := handlers.NewNotesHandler(d.Notes, d.Now)
	exportHandler := handlers.NewExportHandler(d.Notes, exports, d.Prom, d.Now)
	guard := middlewares.NewSessionAuth(d.Sessions, d.Accounts, d.Config.IsProd())

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	api.GET("/health", health.APIHealth)

	auth := api.Group("/auth")
	{
		limited := []gin.HandlerFunc{}
		if d.AuthLimiter != nil {
			limited = append(limited, d.AuthLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
		}

		auth.POST("/register", append(limited, authHandler.Register)...)
		auth.POST("/login", append(limited, authHandler.Login)...)
		auth.POST("/logout", guard.RequireSession(), authHandler.Logout)
		auth.GET("/me", guard.RequireSession(), authHandler.Me)
	}

	notes := api.Group("/notes", guard.RequireSession())
	{
		notes.GET("", notesHandler.List)
		notes.GET("/view", notesHandler.View)
		notes.GET("/export", exportHandler.ExportDate)
		notes.POST("", notesHandler.Create)
		notes.GET("/:id", notesHandler.Get)
		notes.PUT("/:id", notesHandler.Update)
		notes.DELETE("/:id", notesHandler.Delete)
		notes.GET("/:id/export", exportHandler.ExportNote)
	}

	return r
}
