// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/admitcast/backend/internal/predict"
	"github.com/admitcast/backend/internal/storage"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Files   storage.Store
	Records storage.RecordStore
	Jobs    JobManager
	Engine  *predict.Engine
	Version string
}

// Handlers holds all handler instances.
type Handlers struct {
	Health  HealthHandler
	Upload  UploadHandler
	Extract ExtractHandler
	Predict PredictHandler
	WS      *WebSocketHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version),
		Upload:  NewUploadHandler(deps.Files, deps.Jobs),
		Extract: NewExtractHandler(deps.Jobs),
		Predict: NewPredictHandler(deps.Records, deps.Engine),
		WS:      NewWebSocketHandler(deps.Jobs),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// File upload routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	fileGroup.POST("/upload/chunk", handlers.Upload.HandleUploadChunk)
	fileGroup.POST("/upload/complete", handlers.Upload.HandleCompleteUpload)
	fileGroup.POST("/upload/binary", handlers.Upload.HandleUploadBinary)
	fileGroup.GET("/recent", handlers.Upload.HandleGetRecentFiles)
	fileGroup.GET("/:id", handlers.Upload.HandleGetFile)
	fileGroup.DELETE("/:id", handlers.Upload.HandleDeleteFile)
	fileGroup.PUT("/:id", handlers.Upload.HandleRenameFile)

	// Extraction job routes
	extractGroup := e.Group("/api/extract")
	extractGroup.POST("", handlers.Extract.HandleStartExtract)
	extractGroup.GET("/:jobId/status", handlers.Extract.HandleExtractStatus)
	extractGroup.POST("/:jobId/keepalive", handlers.Extract.HandleJobKeepAlive)
	extractGroup.GET("/:jobId/records", handlers.Extract.HandleExtractRecords)
	extractGroup.GET("/:jobId/records/msgpack", handlers.Extract.HandleExtractRecordsMsgpack)
	extractGroup.GET("/:jobId/progress", handlers.Extract.HandleExtractProgressStream)

	// Prediction routes
	e.POST("/api/predict", handlers.Predict.HandlePredict)
	e.GET("/api/institutions", handlers.Predict.HandleListInstitutions)

	// WebSocket job watching
	e.GET("/ws", handlers.WS.HandleWS)
}
