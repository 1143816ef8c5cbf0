package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/db"
	"github.com/luqmanbooso/BuildMart-sub001/internal/handlers"
	"github.com/luqmanbooso/BuildMart-sub001/internal/repository"
	"github.com/luqmanbooso/BuildMart-sub001/internal/router"
	"github.com/luqmanbooso/BuildMart-sub001/internal/router/config"
	"github.com/luqmanbooso/BuildMart-sub001/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
)

func main() {
	// Prices serialize as plain JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	bidRepo := repository.NewPostgresBidRepository(dbPool)
	projectRepo := repository.NewPostgresProjectRepository(dbPool)

	bidService := services.NewBidService(bidRepo, projectRepo)
	projectService := services.NewProjectService(projectRepo)

	bidHandler := handlers.NewBidHandler(bidService, logger, 5*time.Second)
	projectHandler := handlers.NewProjectHandler(projectService, logger, 5*time.Second)

	routes := router.InitRoutes(bidHandler, projectHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
