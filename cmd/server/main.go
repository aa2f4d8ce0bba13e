package main

import (
	"log"

	"github.com/launchpad-amm/curveengine/internal/collaborators"
	"github.com/launchpad-amm/curveengine/internal/config"
	"github.com/launchpad-amm/curveengine/internal/curvelock"
	"github.com/launchpad-amm/curveengine/internal/graduation"
	"github.com/launchpad-amm/curveengine/internal/repository/postgres"
	"github.com/launchpad-amm/curveengine/internal/rewards"
	"github.com/launchpad-amm/curveengine/internal/server"
	"github.com/launchpad-amm/curveengine/internal/trading"
	"github.com/launchpad-amm/curveengine/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize the durable curve repository and external collaborators
	curveRepo := postgres.NewCurveRepository(db)
	ledger := rewards.NewLedger()
	migrationClient := collaborators.NewPoolMigrationClient(cfg.MigrationRPCURL)
	clock := collaborators.SystemTimeSource{}

	coordinator := graduation.New(migrationClient, clock)
	locks := curvelock.NewRegistry()
	sequences := trading.NewSequenceGenerator()

	// assets is left nil: no production AssetTransfer backend has been
	// wired yet, so committed swaps mutate curve reserves without moving
	// off-curve custody (see internal/trading.New's doc comment).
	tradingService := trading.New(curveRepo, ledger, nil, coordinator, locks, sequences.Next)

	// Create and start server
	srv := server.NewServer(cfg, tradingService)

	// Start server (this blocks until shutdown)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
