// Command reset clears the persisted attempt snapshot so the next server
// start begins from a fresh paper.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/teamcollar/stem-assessment/internal/config"
	"github.com/teamcollar/stem-assessment/internal/database"
	"github.com/teamcollar/stem-assessment/internal/logger"
	"github.com/teamcollar/stem-assessment/internal/storage"
)

func main() {
	cfg := config.Load()
	zlog := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.DatabasePath, zlog)
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	defer db.Close()

	if err := storage.New(db, cfg.StorageNamespace).Clear(ctx); err != nil {
		log.Fatalf("clear snapshot: %v", err)
	}

	fmt.Printf("Cleared attempt snapshot for namespace %q\n", cfg.StorageNamespace)
}
