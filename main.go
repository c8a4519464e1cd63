package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"artsync/config"
	"artsync/models"
	"artsync/services"
	"artsync/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	artworksCreatedCounter prometheus.Counter
	artworksUpdatedCounter prometheus.Counter
	importErrorsCounter    prometheus.Counter
)

func init() {
	artworksCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artworks_created_total",
			Help: "Total number of artworks created by import.",
		},
	)
	artworksUpdatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artworks_updated_total",
			Help: "Total number of artworks updated by import.",
		},
	)
	importErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_record_errors_total",
			Help: "Total number of per-record import failures.",
		},
	)
	prometheus.MustRegister(artworksCreatedCounter, artworksUpdatedCounter, importErrorsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to inventory database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Artwork{}, &models.ImportRun{})

	// Setup services
	gateway := storage.NewPostgresGateway(db)
	runRepo := storage.NewRunRepo(db)
	importService := services.NewImportService(cfg, gateway, runRepo, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupImportRoutes(router, importService, runRepo, cfg, logging)
	setupArtworkRoutes(router, db, logging)

	// Setup Cron: fail over import runs that got stuck mid-flight.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		n, err := runRepo.FailStale(context.Background(), time.Duration(cfg.StaleRunMinutes)*time.Minute)
		if err != nil {
			logging.Error("Stale run sweep failed", zap.Error(err))
		} else if n > 0 {
			logging.Warn("Failed over stale import runs", zap.Int64("count", n))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupImportRoutes wires the two-phase import protocol: the preview/execute
// envelope endpoint plus the server-side batched run orchestration.
func setupImportRoutes(router *gin.Engine, svc *services.ImportService, runRepo *storage.RunRepo, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/import")

	// Two-mode envelope. Preview is read-only; execute applies exactly one
	// already-approved, already-thumbnail-resolved batch and is chunk-unaware.
	rg.POST("/artworks", func(c *gin.Context) {
		var req struct {
			Artworks []services.ParsedRecord `json:"artworks" binding:"required"`
			Mode     string                  `json:"mode" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'artworks' and 'mode' are required."})
			return
		}

		switch req.Mode {
		case "preview":
			result, err := svc.Preview(c.Request.Context(), req.Artworks)
			if err != nil {
				log.Error("Preview failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "preview failed"})
				return
			}
			c.JSON(http.StatusOK, result)

		case "execute":
			if len(req.Artworks) > cfg.BatchSize {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "batch too large",
					"max":   cfg.BatchSize,
				})
				return
			}
			result := svc.ExecuteBatch(c.Request.Context(), req.Artworks)
			artworksCreatedCounter.Add(float64(len(result.Created)))
			artworksUpdatedCounter.Add(float64(len(result.Updated)))
			importErrorsCounter.Add(float64(len(result.Errors)))
			c.JSON(http.StatusOK, result)

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be 'preview' or 'execute'"})
		}
	})

	// Full orchestration over an approved candidate set: chunking,
	// sequential batches, progress accounting. Runs async; poll the run id.
	rg.POST("/run", func(c *gin.Context) {
		var req struct {
			Artworks []services.ParsedRecord `json:"artworks" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'artworks' is required."})
			return
		}

		run, err := svc.StartRun(c.Request.Context(), len(req.Artworks))
		if err != nil {
			log.Error("Failed to create import run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
			return
		}

		go func() {
			result := svc.RunImport(context.Background(), run.ID, req.Artworks)
			artworksCreatedCounter.Add(float64(len(result.Created)))
			artworksUpdatedCounter.Add(float64(len(result.Updated)))
			importErrorsCounter.Add(float64(len(result.Errors)))
		}()

		c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID, "batches_total": run.BatchesTotal})
	})

	rg.GET("/runs/:id", func(c *gin.Context) {
		run, err := runRepo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			log.Error("Failed to load import run", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, run)
	})
}

func setupArtworkRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/artworks")

	rg.GET("/", func(c *gin.Context) {
		var artworks []models.Artwork
		if err := db.Find(&artworks).Error; err != nil {
			log.Error("Database query for all artworks failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, artworks)
	})

	rg.POST("/query", func(c *gin.Context) {
		type ArtworkQuery struct {
			Type         string `json:"type"`
			Year         string `json:"year"`
			Status       string `json:"status"`
			HasThumbnail *bool  `json:"has_thumbnail"`
			Limit        int    `json:"limit"`
		}

		var req ArtworkQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Artwork{})

		if req.Type != "" {
			query = query.Where("type = ?", req.Type)
		}
		if req.Year != "" {
			query = query.Where("year = ?", req.Year)
		}
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.HasThumbnail != nil {
			if *req.HasThumbnail {
				query = query.Where("thumbnail_url <> ''")
			} else {
				query = query.Where("thumbnail_url = '' OR thumbnail_url IS NULL")
			}
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var artworks []models.Artwork
		if err := query.Order("created_at desc").Find(&artworks).Error; err != nil {
			log.Error("Database query for artworks failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, artworks)
	})

	// Curator edits. Only the fields sent in the body are written.
	rg.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")

		var artwork models.Artwork
		if err := db.First(&artwork, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "artwork not found"})
				return
			}
			log.Error("DB error checking for artwork on PUT", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var updateData map[string]interface{}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		delete(updateData, "id")
		delete(updateData, "created_at")

		if err := db.Model(&artwork).Updates(updateData).Error; err != nil {
			log.Error("DB error updating artwork", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update artwork"})
			return
		}

		c.JSON(http.StatusOK, artwork)
	})
}
