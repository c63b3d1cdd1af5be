package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/admitcast/backend/internal/api"
	"github.com/admitcast/backend/internal/config"
	"github.com/admitcast/backend/internal/extract"
	"github.com/admitcast/backend/internal/predict"
	"github.com/admitcast/backend/internal/session"
	"github.com/admitcast/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("ADMITCAST_CONFIG")
	if configPath == "" {
		configPath = "admitcast.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize stores
	fileStore, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize file storage: %v\n", err)
		os.Exit(1)
	}

	recordStore, err := storage.NewDuckRecordStore(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to initialize record store: %v\n", err)
		os.Exit(1)
	}
	defer recordStore.Close()

	// Initialize extraction registry and job manager
	registry := extract.NewRegistry(time.Now())
	jobMgr := session.NewManager(registry, fileStore, recordStore)

	// Background job cleanup
	go func() {
		interval := time.Duration(cfg.Extraction.CleanupIntervalMinutes) * time.Minute
		maxAge := time.Duration(cfg.Extraction.JobMaxAgeMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			jobMgr.CleanupOldJobs(maxAge)
		}
	}()

	// Prediction engine
	engine := predict.NewEngine(predict.Config{
		Now:               time.Now(),
		RecentWindowYears: cfg.Predictor.RecentWindowYears,
		MaxSuggestions:    cfg.Predictor.MaxSuggestions,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Server.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				strings.HasSuffix(path, "/progress") ||
				path == "/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// Routes
	handlers := api.NewHandlers(&api.Dependencies{
		Files:   fileStore,
		Records: recordStore,
		Jobs:    jobMgr,
		Engine:  engine,
		Version: Version,
	})
	api.RegisterRoutes(e, handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	fmt.Printf("admitcast backend %s (built %s) listening on %s\n", Version, BuildTime, addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
}
