package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/git-dungeon/backend/internal/api/handlers"
	"github.com/codyseavey/git-dungeon/backend/internal/config"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
)

func SetupRouter(cfg *config.Config, characterService *services.CharacterService, embedService *services.EmbedService, spriteStorage *services.SpriteStorageService) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	// CORS configuration - allow configured origins or the local dev servers
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	embedHandler := handlers.NewEmbedHandler(embedService)
	characterHandler := handlers.NewCharacterHandler(characterService, spriteStorage)
	limiter := newClientRateLimiter(cfg.EmbedRateLimit, cfg.EmbedRateBurst)

	// Uploaded item sprites, served inert
	if spriteStorage != nil {
		sprites := router.Group("/sprites", spriteHeaders())
		sprites.Static("/", spriteStorage.GetStorageDir())
	}

	api := router.Group("/api")
	{
		embeds := api.Group("/embed", limiter.middleware())
		{
			embeds.GET("/:username", embedHandler.GetEmbed)
			embeds.POST("/preview", embedHandler.PreviewEmbed)
		}

		characters := api.Group("/characters")
		{
			characters.GET("/:username", characterHandler.GetCharacter)
			characters.PUT("/:username", characterHandler.PutCharacter)
			characters.POST("/:username/items/:id/sprite", characterHandler.UploadItemSprite)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/favicon.svg", filepath.Join(frontendPath, "favicon.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
