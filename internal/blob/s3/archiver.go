package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// Archiver exports old decision journal rows to blob storage as JSONL and
// prunes them from the primary store. Rows are deleted only after the upload
// succeeds; an upload failure leaves the journal untouched so the next run
// retries the same window.
type Archiver struct {
	writer    domain.BlobWriter
	decisions domain.DecisionStore
	retention time.Duration
	log       *slog.Logger
}

// NewArchiver creates an Archiver that keeps rows newer than the retention
// window and exports everything older.
func NewArchiver(writer domain.BlobWriter, decisions domain.DecisionStore, retention time.Duration, log *slog.Logger) *Archiver {
	return &Archiver{
		writer:    writer,
		decisions: decisions,
		retention: retention,
		log:       log,
	}
}

// RunOnce performs a single archive pass: query rows older than the
// retention cutoff, upload them as JSONL, then delete them. Returns the
// number of rows archived.
func (a *Archiver) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-a.retention)

	recs, err := a.decisions.ListBefore(ctx, cutoff, 0)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive decisions query: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(recs)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive decisions marshal: %w", err)
	}

	path := archivePath(cutoff)
	if err := a.writer.Put(ctx, path, buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive decisions upload: %w", err)
	}

	deleted, err := a.decisions.DeleteBefore(ctx, cutoff)
	if err != nil {
		return int64(len(recs)), fmt.Errorf("s3blob: archive decisions prune: %w", err)
	}

	a.log.Info("archived decisions",
		"path", path,
		"archived", len(recs),
		"deleted", deleted,
		"cutoff", cutoff.Format(time.RFC3339),
	)
	return int64(len(recs)), nil
}

// Run executes archive passes on the given interval until the context is
// cancelled. Errors are logged and do not stop the loop.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.log.Error("archive pass failed", "error", err)
			}
		}
	}
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month-day of the cutoff time.
func archivePath(cutoff time.Time) string {
	return fmt.Sprintf("archive/decisions/%s.jsonl", cutoff.Format("2006-01-02"))
}

// marshalJSONL serialises records as newline-delimited JSON, one compact
// object per line.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
