package main

import (
	"context"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"agroyield/adapters/dataio"
	"agroyield/adapters/postgres"
	"agroyield/api"
	"agroyield/app"
	"agroyield/domain/yield"
	"agroyield/internal"
	"agroyield/internal/analysis"
	"agroyield/internal/config"
	"agroyield/internal/errors"
)

func main() {
	// Load .env if present; environment variables win
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	snapshot, err := loadSnapshot(cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset: %v", err)
		os.Exit(1)
	}
	logger.Info("snapshot %s loaded: %d observations, version %s",
		snapshot.ID(), snapshot.Len(), snapshot.Version())

	service := app.NewAnalysisService(analysis.NewEngine(), cfg.Analysis.Alpha, logger)
	server := api.NewServer(service, snapshot, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("starting API server on %s", addr)
	if err := http.ListenAndServe(addr, server); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}

// loadSnapshot reads observations from the database when DATABASE_URL is
// set, otherwise from the configured data file
func loadSnapshot(cfg *config.Config, logger *internal.Logger) (*yield.Snapshot, error) {
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to database")
		}
		defer db.Close()

		repo := postgres.NewObservationRepository(db)
		observations, err := repo.Load(context.Background(), yield.Filters{})
		if err != nil {
			return nil, errors.Wrap(err, "failed to load observations")
		}
		logger.Info("loaded %d observations from database", len(observations))
		return yield.NewSnapshot(observations)
	}

	reader := dataio.NewDataReader(cfg.Data.File, dataio.Options{
		RejectZeroYields: cfg.Data.RejectZeroYields,
	})
	return reader.ReadSnapshot()
}
