// AngelaMos | 2026
// importer.go

package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/prepvault/internal/content"
	"github.com/carterperez-dev/prepvault/internal/core"
	"github.com/carterperez-dev/prepvault/internal/metrics"
)

const (
	tracerName = "prepvault/importer"

	DefaultBatchSize = 50

	formatCSV  = "csv"
	formatJSON = "json"

	scopeRow   = "row"
	scopeBatch = "batch"
	scopeFatal = "fatal"
)

var (
	ErrMissingHeaders = errors.New("missing required headers")
	ErrNoValidRows    = errors.New("no valid rows to import")
	ErrNotArray       = errors.New("payload must be a JSON array")
	ErrInvalidPayload = errors.New("payload is not a valid record array")
	ErrEmptyPayload   = errors.New("payload contains no records")
	ErrTooManyRecords = errors.New("payload exceeds the single insert limit")
	ErrInterrupted    = errors.New("import interrupted")
)

// Inserter persists a slice of records in one store call.
type Inserter[T any] interface {
	InsertMany(ctx context.Context, items []T) (int, error)
}

// Result reports one import. Inserted counts records actually stored;
// Errors holds row and batch failures in the order they happened. A
// result with both inserted records and errors is a partial success.
type Result struct {
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

// QuestionImporter loads question CSVs in fixed-size batches.
type QuestionImporter struct {
	store     Inserter[content.Question]
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewQuestionImporter(
	store Inserter[content.Question],
	batchSize int,
	logger *slog.Logger,
) *QuestionImporter {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	batchSize = min(batchSize, content.QuestionKind.MaxInsertRows())
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionImporter{
		store:     store,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Import parses payload and inserts the valid rows batch by batch. A
// failed batch is recorded and the next batch still runs. Header problems
// and a payload with no valid rows fail before any store call. When ctx
// ends between batches the result so far is returned with ErrInterrupted.
func (im *QuestionImporter) Import(
	ctx context.Context,
	payload, subcategoryID, importerID string,
) (result *Result, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "importer.questions_csv",
		attribute.String("subcategory_id", subcategoryID))
	defer func() { core.EndSpan(span, err) }()

	kind := content.QuestionKind.Name

	sheet, err := ParseQuestionCSV(payload, subcategoryID, importerID, im.now())
	if err != nil {
		countErrors(formatCSV, kind, scopeFatal, 1)
		return nil, err
	}

	result = &Result{Total: sheet.Rows, Errors: append([]string{}, sheet.Errors...)}
	countErrors(formatCSV, kind, scopeRow, len(sheet.Errors))

	if len(sheet.Questions) == 0 {
		countErrors(formatCSV, kind, scopeFatal, 1)
		return result, fmt.Errorf("%w: %s", ErrNoValidRows, strings.Join(sheet.Errors, "; "))
	}

	for start, batch := 0, 1; start < len(sheet.Questions); start, batch = start+im.batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			im.logger.Warn("question import interrupted",
				"batch", batch,
				"subcategory_id", subcategoryID,
				"total", result.Total,
				"inserted", result.Inserted,
			)
			metrics.ImportRecords.WithLabelValues(formatCSV, kind).Add(float64(result.Inserted))
			countErrors(formatCSV, kind, scopeFatal, 1)
			return result, fmt.Errorf("%w after %d inserted: %w", ErrInterrupted, result.Inserted, err)
		}

		end := min(start+im.batchSize, len(sheet.Questions))

		n, insertErr := im.store.InsertMany(ctx, sheet.Questions[start:end])
		if insertErr != nil {
			im.logger.Error("question import batch failed",
				"batch", batch,
				"subcategory_id", subcategoryID,
				"error", insertErr,
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Batch %d: %v", batch, insertErr))
			countErrors(formatCSV, kind, scopeBatch, 1)
			continue
		}

		result.Inserted += n
	}

	metrics.ImportRecords.WithLabelValues(formatCSV, kind).Add(float64(result.Inserted))
	span.SetAttributes(
		attribute.Int("import.total", result.Total),
		attribute.Int("import.inserted", result.Inserted),
		attribute.Int("import.errors", len(result.Errors)),
	)

	im.logger.Info("question import finished",
		"subcategory_id", subcategoryID,
		"importer_id", importerID,
		"total", result.Total,
		"inserted", result.Inserted,
		"errors", len(result.Errors),
	)

	return result, nil
}

func countErrors(format, kind, scope string, n int) {
	if n > 0 {
		metrics.ImportErrors.WithLabelValues(format, kind, scope).Add(float64(n))
	}
}
