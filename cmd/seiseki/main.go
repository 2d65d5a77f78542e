package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/okian/seiseki/internal/config"
	"github.com/okian/seiseki/internal/importer"
	"github.com/okian/seiseki/internal/importer/adapters"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/lookup"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
)

func main() {
	var (
		userID        = flag.Int("user", 1, "User to import scores for")
		importType    = flag.String("type", "", "Import type: file/mer-iidx, ir/fervidex, ir/usc, api/kai-sdvx, api/artemis-chunithm")
		inputPath     = flag.String("input", "", "Input file for file/IR import types")
		chartHash     = flag.String("chart-hash", "", "Chart hash for ir/usc imports")
		artemisUserID = flag.Int("artemis-user", 0, "ARTEMiS user ID for api/artemis-chunithm imports")
	)
	flag.Parse()

	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
		return
	}

	adapter, err := buildAdapter(cfg, store, *importType, *inputPath, *chartHash, *artemisUserID)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		flag.Usage()
		return
	}

	engine := importer.New(store,
		importer.WithWorkers(cfg.WorkerCount),
		importer.WithQueueThreshold(cfg.QueueThreshold),
	)

	result, err := engine.RunImport(ctx, *userID, adapter)
	if err != nil {
		log.Error(ctx, "import failed", logger.Error(err))
	}
	if result != nil {
		out, _ := json.MarshalIndent(result, "", "  ")
		os.Stdout.Write(append(out, '\n'))
	}
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return repository.OpenSQLite(cfg.StorePath)
	default:
		return repository.NewMemoryStore(), nil
	}
}

func buildAdapter(cfg *config.Config, store repository.Store, importType, inputPath, chartHash string, artemisUserID int) (adapters.Adapter, error) {
	conv := convert.New(lookup.NewResolver(store))

	switch importType {
	case "file/mer-iidx":
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, err
		}
		return adapters.NewMER(conv, f), nil
	case "ir/fervidex":
		body, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		return adapters.NewFervidex(conv, body), nil
	case "ir/usc":
		body, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		return adapters.NewUSC(conv, chartHash, body), nil
	case "api/kai-sdvx":
		return adapters.NewKaiSDVX(conv, nil, cfg.KaiBaseURL, cfg.KaiToken, cfg.KaiService), nil
	case "api/artemis-chunithm":
		db, err := sql.Open("mysql", cfg.ArtemisDSN)
		if err != nil {
			return nil, err
		}
		return adapters.NewArtemisChunithm(conv, db, artemisUserID), nil
	default:
		return nil, errUnknownImportType(importType)
	}
}

type errUnknownImportType string

func (e errUnknownImportType) Error() string {
	return "unknown import type " + string(e)
}
