package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"seqcode/adapters/memory"
	"seqcode/adapters/postgres"
	"seqcode/app"
	"seqcode/domain/sequence"
	"seqcode/internal/config"
	"seqcode/internal/migration"
	"seqcode/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	oracle, err := memory.NewSchemaOracleFromFile(cfg.Schema.CatalogFile)
	if err != nil {
		log.Fatalf("Failed to load schema catalog: %v", err)
	}

	repo := postgres.NewDefinitionRepository(db)
	generation := app.NewGenerationService(repo)
	admin := app.NewAdminService(repo, sequence.NewValidator(oracle))

	api := ui.NewApp(ui.Config{Port: cfg.Server.Port}, generation, admin, oracle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting sequence code server on :%s", cfg.Server.Port)
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return api.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		return nil, err
	}
	return db, nil
}
