// Package export writes stored assessments to a CSV file.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/models"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
)

// Archiver copies a finished export somewhere durable and returns its key.
type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}

// EventPublisher receives an event for every written export.
type EventPublisher interface {
	PublishExported(ctx context.Context, key string, event any) error
}

// Exporter writes exports to one fixed path, overwriting the previous file.
type Exporter struct {
	path      string
	archiver  Archiver
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// New creates an exporter. archiver and publisher may be nil.
func New(path string, archiver Archiver, publisher EventPublisher) *Exporter {
	return &Exporter{
		path:      path,
		archiver:  archiver,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("export"),
	}
}

// Path returns the file every export is written to.
func (e *Exporter) Path() string {
	return e.path
}

// Export writes records to the export path and returns it. With no records it
// writes nothing and returns "".
func (e *Exporter) Export(ctx context.Context, records []assessment.Record) (string, error) {
	if len(records) == 0 {
		e.metrics.RecordExport(0, nil)
		e.log.Info().Msg("no records to export")
		return "", nil
	}

	if err := e.writeFile(records); err != nil {
		e.metrics.RecordExport(len(records), err)
		e.log.Error().Err(err).Str("path", e.path).Msg("export failed")
		return "", err
	}
	e.metrics.RecordExport(len(records), nil)
	e.log.Info().Int("rows", len(records)).Str("path", e.path).Msg("export written")

	var archiveKey string
	if e.archiver != nil {
		key, err := e.archiver.Archive(ctx, e.path)
		if err != nil {
			e.log.Warn().Err(err).Msg("failed to archive export")
		} else {
			archiveKey = key
		}
	}

	if e.publisher != nil {
		event := models.ExportCompleted{
			EventType:  models.EventExportCompleted,
			Rows:       len(records),
			Path:       e.path,
			ArchiveKey: archiveKey,
			Timestamp:  time.Now().UnixMilli(),
		}
		if err := e.publisher.PublishExported(ctx, filepath.Base(e.path), event); err != nil {
			e.log.Warn().Err(err).Msg("failed to publish export event")
		}
	}

	return e.path, nil
}

// writeFile writes into a temporary file next to the export path and renames
// it into place, so a reader holding the previous file keeps a complete copy.
func (e *Exporter) writeFile(records []assessment.Record) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(e.path)+"-*")
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("setting export file mode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return fmt.Errorf("replacing export file: %w", err)
	}
	return nil
}

// WriteCSV writes a header taken from the first record's columns, then one row
// per record with values in header order.
func WriteCSV(w io.Writer, records []assessment.Record) error {
	if len(records) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	header := records[0].Columns()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, rec := range records {
		row := make([]string, len(header))
		for j, col := range header {
			row[j] = rec.Get(assessment.Field(col))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
