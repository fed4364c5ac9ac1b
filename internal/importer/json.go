// AngelaMos | 2026
// json.go

package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/prepvault/internal/content"
	"github.com/carterperez-dev/prepvault/internal/core"
	"github.com/carterperez-dev/prepvault/internal/metrics"
)

// RecordImporter loads a JSON array of one content kind. Records are not
// validated individually; the store's constraints are the only check, and
// the whole array goes to the store in a single insert.
type RecordImporter[T any, P interface {
	*T
	content.Item
}] struct {
	store  Inserter[T]
	kind   content.Kind
	logger *slog.Logger
	now    func() time.Time
}

func NewRecordImporter[T any, P interface {
	*T
	content.Item
}](store Inserter[T], kind content.Kind, logger *slog.Logger) *RecordImporter[T, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordImporter[T, P]{
		store:  store,
		kind:   kind,
		logger: logger,
		now:    time.Now,
	}
}

func (im *RecordImporter[T, P]) Kind() string {
	return im.kind.Name
}

// Import decodes payload and stores every record or none. Any shape other
// than an array, an empty array, an array too large for one insert, or a
// store rejection fails the import.
func (im *RecordImporter[T, P]) Import(
	ctx context.Context,
	payload []byte,
	importerID string,
) (result *Result, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "importer.records_json",
		attribute.String("kind", im.kind.Name))
	defer func() {
		if err != nil {
			countErrors(formatJSON, im.kind.Name, scopeFatal, 1)
		}
		core.EndSpan(span, err)
	}()

	items, err := decodeArray[T](payload)
	if err != nil {
		return nil, err
	}
	if limit := im.kind.MaxInsertRows(); len(items) > limit {
		return nil, fmt.Errorf("%w: %d records, at most %d", ErrTooManyRecords, len(items), limit)
	}

	now := im.now()
	for i := range items {
		P(&items[i]).Prepare(importerID, now)
	}

	result = &Result{Total: len(items), Errors: []string{}}

	n, err := im.store.InsertMany(ctx, items)
	if err != nil {
		im.logger.Error("record import rejected",
			"kind", im.kind.Name,
			"records", len(items),
			"error", err,
		)
		result.Errors = append(result.Errors, err.Error())
		return result, fmt.Errorf("import %s: %w", im.kind.Name, err)
	}

	result.Inserted = n
	metrics.ImportRecords.WithLabelValues(formatJSON, im.kind.Name).Add(float64(n))
	span.SetAttributes(attribute.Int("import.inserted", n))

	im.logger.Info("record import finished",
		"kind", im.kind.Name,
		"importer_id", importerID,
		"inserted", n,
	)

	return result, nil
}

func decodeArray[T any](payload []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if len(items) == 0 {
		return nil, ErrEmptyPayload
	}

	return items, nil
}
