package controlplane

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/journal"
	"github.com/nfsync/nfsync/internal/version"
)

type RouteConfig struct {
	Auth TokenAuthConfig
}

// SetupRoutes builds the control plane router over the sync service.
func SetupRoutes(svc *daemon.SyncService, store *config.Store, jrnl *journal.Journal, hub *EventHub, routeConfig *RouteConfig) http.Handler {
	r := gin.New()

	rateLimitStore := memory.NewStore()
	rateLimiter := limiter.New(rateLimitStore, limiter.Rate{
		Period: 1 * time.Second,
		Limit:  10,
	})

	statusH := NewStatusHandler(svc)
	mountH := NewMountHandler(svc)
	pairsH := NewPairsHandler(store)
	configH := NewConfigHandler(store)
	syncH := NewSyncHandler(svc, jrnl)

	r.Use(gin.Recovery())
	r.Use(sloggin.NewWithConfig(slog.Default(), sloggin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(CORS())
	r.Use(Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "%s %s", version.AppName, version.Version)
	})

	v1 := r.Group("/v1")
	v1.Use(TokenAuth(routeConfig.Auth))
	{
		v1.GET("/status", statusH.Status)

		v1Mount := v1.Group("/mount")
		{
			v1Mount.POST("", mountH.Mount)
			v1Mount.DELETE("", mountH.Unmount)
			v1Mount.GET("/probe", mountH.Probe)
		}

		v1Pairs := v1.Group("/pairs")
		{
			v1Pairs.GET("", pairsH.List)
			v1Pairs.POST("", pairsH.Add)
			v1Pairs.DELETE("", pairsH.Remove)
			v1Pairs.PATCH("", pairsH.Toggle)
		}

		v1Excludes := v1.Group("/excludes")
		{
			v1Excludes.GET("", configH.ListExcludes)
			v1Excludes.POST("", configH.AddExclude)
			v1Excludes.DELETE("", configH.RemoveExclude)
		}

		v1Password := v1.Group("/password")
		{
			v1Password.POST("", configH.SetPassword)
			v1Password.DELETE("", configH.ClearPassword)
		}

		v1Sync := v1.Group("/sync")
		{
			v1Sync.POST("/now", syncH.Now)
			v1Sync.POST("/cancel", syncH.Cancel)
			v1Sync.GET("/runs", syncH.Runs)
			v1Sync.GET("/runs/:id/errors", syncH.RunErrors)
			v1Sync.GET("/events", hub.ServeWS)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r
}
