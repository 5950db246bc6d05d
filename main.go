package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/config"
	"github.com/kendall-kelly/laundry-api/controllers"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/middleware"
	"github.com/kendall-kelly/laundry-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	appLog := logger.Init(logger.Options{
		ServiceName: "laundry-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := appLog.WithField(context.Background(), "env", cfg.GoEnv)
	appLog.Info(ctx, "starting laundry quote API")

	if err := config.ConnectDatabase(cfg); err != nil {
		appLog.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}

	catalogs, err := services.InitCatalogService(ctx, config.GetDB())
	if err != nil {
		appLog.Error(ctx, "failed to load price lists", err)
		os.Exit(1)
	}

	if cfg.PhotoStorageEnabled() {
		store, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			appLog.Error(ctx, "failed to initialize photo storage", err)
			os.Exit(1)
		}
		services.InitPhotoService(store)
	} else {
		appLog.Warn(ctx, "AWS_S3_BUCKET not set, photo uploads disabled")
	}

	if cfg.OrderSubmitURL != "" {
		services.InitOrderSubmitter(cfg.OrderSubmitURL, cfg.OrderSubmitTimeout, cfg.OrderSubmitMaxRetries)
	} else {
		appLog.Warn(ctx, "ORDER_SUBMIT_URL not set, order submission disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info(appLog.WithField(ctx, "addr", server.Addr), "server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error(ctx, "server stopped", err)
			os.Exit(1)
		}
	}()

	// SIGHUP reloads price lists from the database; SIGINT/SIGTERM shut down
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range signals {
		if sig == syscall.SIGHUP {
			if err := catalogs.Reload(ctx); err != nil {
				appLog.Error(ctx, "catalog reload failed, keeping previous price lists", err)
			} else {
				appLog.Info(ctx, "price lists reloaded")
			}
			continue
		}
		break
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error(ctx, "graceful shutdown failed", err)
	}
	appLog.Info(ctx, "server stopped")
}

// setupRouter wires middleware and every API route
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	appLog := logger.Get()
	router.Use(gin.Recovery(), middleware.RequestID(appLog), middleware.RequestLogger(appLog))
	router.Use(cors.New(corsConfig(cfg)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.GET("/services", controllers.ListServices)
		svc := v1.Group("/services/:service")
		{
			svc.GET("/catalog", controllers.GetCatalog)
			svc.GET("/selection/default", controllers.GetDefaultSelection)
			svc.POST("/quote", controllers.CreateQuote)
			svc.POST("/validate", controllers.ValidateSelection)
			svc.POST("/bundles", controllers.ListApplicableBundles)
			svc.POST("/bundles/:bundleId/apply", controllers.ApplyBundle)
		}

		v1.POST("/orders", controllers.SubmitOrder)

		v1.POST("/photos", controllers.UploadPhoto)
		v1.DELETE("/photos/:photoId", controllers.DeletePhoto)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	origins := []string{"*"}
	if cfg != nil && len(cfg.CORSAllowedOrigins) > 0 {
		origins = cfg.CORSAllowedOrigins
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Laundry API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not connected",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
