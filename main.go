package main

import (
	"path/filepath"
	"time"

	"github.com/askeland/bildereise/config"
	"github.com/askeland/bildereise/models"
	"github.com/askeland/bildereise/routes"
	"github.com/askeland/bildereise/services/vision"
	"github.com/askeland/bildereise/storage"
	"github.com/askeland/bildereise/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	var store storage.Store
	if cfg.DatabaseURI != "" {
		db := config.InitDatabase(&models.User{}, &models.Gallery{})
		store = storage.NewGormStore(db)
		utils.Sugar.Info("using database-backed storage")
	} else {
		store = storage.NewMemoryStore()
		utils.Sugar.Warn("no DatabaseURI configured, using in-memory storage")
	}

	analyzer := vision.NewClient(
		cfg.AnthropicAPIKey,
		cfg.AnthropicModel,
		cfg.AnthropicMaxTokens,
		time.Duration(cfg.AnalysisTimeoutSec)*time.Second,
	)

	r, err := routes.SetupRouter(store, analyzer)
	if err != nil {
		utils.Sugar.Fatalf("router setup failed: %v", err)
	}

	// Best-effort removal of stale originals left behind by crashes
	utils.StartOrphanSweeper(filepath.Join(cfg.UploadsDir, "gallery"), 5*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
