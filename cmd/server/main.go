package main

import (
	"log"
	"time"

	"psicosites/internal/api"
	"psicosites/internal/config"
	"psicosites/internal/database"
	"psicosites/internal/resolver"
	"psicosites/internal/tracking"
	"psicosites/internal/webhook"
	"psicosites/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.DB

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	baseResolver := resolver.New(resolver.NewGormStore(db))

	var siteResolver api.SiteResolver = baseResolver
	var ledger tracking.VisitLedger = tracking.NewMemoryLedger()
	var cached *resolver.CachedResolver
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cached = resolver.NewCachedResolver(baseResolver, resolver.NewRedisCache(rdb), time.Duration(cfg.CacheTTLSeconds)*time.Second)
		siteResolver = cached
		ledger = tracking.NewRedisLedger(rdb)
		log.Printf("Resolver cache enabled via redis at %s", cfg.RedisAddr)
	}

	var dashCache api.CacheInvalidator
	var hookCache webhook.CacheInvalidator
	if cached != nil {
		dashCache = cached
		hookCache = cached
	}

	hub := ws.NewHub()
	go hub.Run()

	sinks := []tracking.Sink{tracking.NewGormSink(db), hub}
	if cfg.TrackingEndpoint != "" {
		sinks = append(sinks, tracking.NewHTTPSink(cfg.TrackingEndpoint))
		log.Printf("Forwarding tracking events to %s", cfg.TrackingEndpoint)
	}
	publisher := tracking.NewPublisher(256, sinks...)
	defer publisher.Close()

	siteHandler := api.NewSiteHandler(siteResolver, db, publisher, ledger, cfg.PlatformURL)
	trackingHandler := api.NewTrackingHandler(publisher)
	dashboardHandler := api.NewDashboardHandler(db, dashCache)
	blogHandler := api.NewBlogHandler(db)
	analyticsHandler := api.NewAnalyticsHandler(db)
	webhookHandler := webhook.NewHandler(cfg, db, hookCache)

	// Billing Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleEvent)

	// Public Site Routes
	r.GET("/sites/:domain", siteHandler.GetSite)
	r.GET("/sites/:domain/blog", siteHandler.GetSiteBlog)

	// Dashboard API Routes
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/tracking", trackingHandler.IngestEvent)
		apiGroup.POST("/tracking/click", trackingHandler.IngestClick)

		apiGroup.GET("/sites", dashboardHandler.GetSites)
		apiGroup.POST("/sites", dashboardHandler.CreateSite)
		apiGroup.GET("/sites/:id", dashboardHandler.GetSite)
		apiGroup.PUT("/sites/:id", dashboardHandler.UpdateSite)
		apiGroup.POST("/sites/:id/publish", dashboardHandler.PublishSite)
		apiGroup.DELETE("/sites/:id", dashboardHandler.DeleteSite)

		apiGroup.GET("/profiles/:id", dashboardHandler.GetProfile)
		apiGroup.PUT("/profiles/:id", dashboardHandler.UpdateProfile)

		apiGroup.GET("/sites/:id/posts", blogHandler.GetPosts)
		apiGroup.POST("/sites/:id/posts", blogHandler.CreatePost)
		apiGroup.PUT("/posts/:id", blogHandler.UpdatePost)
		apiGroup.DELETE("/posts/:id", blogHandler.DeletePost)

		apiGroup.GET("/sites/:id/analytics", analyticsHandler.GetSiteAnalytics)
		apiGroup.GET("/analytics/live", func(c *gin.Context) {
			hub.ServeWs(c.Writer, c.Request)
		})
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
