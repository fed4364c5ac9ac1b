// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carterperez-dev/prepvault/internal/catalog"
	"github.com/carterperez-dev/prepvault/internal/config"
	"github.com/carterperez-dev/prepvault/internal/content"
	"github.com/carterperez-dev/prepvault/internal/core"
	"github.com/carterperez-dev/prepvault/internal/importer"
	"github.com/carterperez-dev/prepvault/internal/migrations"
)

type options struct {
	configPath  string
	format      string
	kind        string
	file        string
	subcategory string
	importerID  string
	migrate     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&opts.format, "format", "csv", "payload format: csv or json")
	flag.StringVar(&opts.kind, "kind", content.QuestionKind.Name,
		"content kind for json imports")
	flag.StringVar(&opts.file, "file", "", "payload file to import")
	flag.StringVar(&opts.subcategory, "subcategory", "",
		"subcategory id for csv question imports")
	flag.StringVar(&opts.importerID, "importer", "", "user id recorded as creator")
	flag.BoolVar(&opts.migrate, "migrate", false, "apply migrations before importing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	result, err := run(opts, logger)
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		//nolint:errcheck // stdout
		_ = enc.Encode(result)
	}
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) (*importer.Result, error) {
	if opts.file == "" {
		return nil, errors.New("-file is required")
	}

	payload, err := os.ReadFile(opts.file)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.LoadForImport(opts.configPath)
	if err != nil {
		return nil, err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("database close error", "error", closeErr)
		}
	}()

	if opts.migrate {
		if err := migrations.Up(db.DB.DB); err != nil {
			return nil, err
		}
	}

	version, dirty, err := migrations.Version(db.DB.DB)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("schema version %d is dirty", version)
	}

	switch opts.format {
	case "csv":
		return importQuestions(ctx, db, cfg, opts, payload, logger)
	case "json":
		loader, err := recordLoader(db, opts.kind, logger)
		if err != nil {
			return nil, err
		}
		return loader.Import(ctx, payload, opts.importerID)
	default:
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}
}

func importQuestions(
	ctx context.Context,
	db *core.Database,
	cfg *config.Config,
	opts options,
	payload []byte,
	logger *slog.Logger,
) (*importer.Result, error) {
	if opts.subcategory == "" {
		return nil, errors.New("-subcategory is required for csv imports")
	}

	exists, err := catalog.NewRepository(db.DB).SubcategoryExists(ctx, opts.subcategory)
	if err != nil {
		return nil, fmt.Errorf("check subcategory: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("subcategory %s: %w", opts.subcategory, core.ErrNotFound)
	}

	store := content.NewRepository[content.Question](db.DB, content.QuestionKind)
	im := importer.NewQuestionImporter(store, cfg.Import.BatchSize, logger)

	return im.Import(ctx, string(payload), opts.subcategory, opts.importerID)
}

func recordLoader(
	db *core.Database,
	kind string,
	logger *slog.Logger,
) (importer.RecordLoader, error) {
	switch kind {
	case content.QuestionKind.Name:
		return importer.NewRecordImporter[content.Question](
			content.NewRepository[content.Question](db.DB, content.QuestionKind),
			content.QuestionKind, logger), nil
	case content.CodingQuestionKind.Name:
		return importer.NewRecordImporter[content.CodingQuestion](
			content.NewRepository[content.CodingQuestion](db.DB, content.CodingQuestionKind),
			content.CodingQuestionKind, logger), nil
	case content.SystemDesignKind.Name:
		return importer.NewRecordImporter[content.SystemDesignProblem](
			content.NewRepository[content.SystemDesignProblem](db.DB, content.SystemDesignKind),
			content.SystemDesignKind, logger), nil
	case content.ProjectKind.Name:
		return importer.NewRecordImporter[content.Project](
			content.NewRepository[content.Project](db.DB, content.ProjectKind),
			content.ProjectKind, logger), nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}
