package summary

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/iryohi/receiptsum/internal/scanning"
)

const (
	// DefaultChunkSize is the number of images dispatched per chunk
	DefaultChunkSize = 10
	// maxWorkers caps concurrent API calls within a chunk
	maxWorkers = 5
)

// Config carries the run parameters. It is threaded explicitly through the
// service so nothing reads process-wide mutable state.
type Config struct {
	// OutputPath is the summary CSV path; the detail CSV derives from it
	OutputPath string
	// ChunkSize is the number of images per sequential chunk
	ChunkSize int
}

func (c Config) withDefaults() Config {
	if c.OutputPath == "" {
		c.OutputPath = "medical_receipts_data.csv"
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}

// workerLimit derives the per-chunk concurrency cap
func (c Config) workerLimit() int {
	if c.ChunkSize < maxWorkers {
		return c.ChunkSize
	}
	return maxWorkers
}

// runBatches fans the image set out to the scanner in sequential chunks.
// Within a chunk each image is extracted concurrently under the worker
// limit, every worker writing only its own result slot. A failed or
// unparseable extraction becomes a sentinel item in that slot; nothing an
// individual image does can abort the run or disturb a sibling's result,
// so the returned slice always holds one item per input path, in input
// order.
func (s *Service) runBatches(ctx context.Context, paths []string) []ReceiptItem {
	items := make([]ReceiptItem, len(paths))

	for start := 0; start < len(paths); start += s.cfg.ChunkSize {
		end := start + s.cfg.ChunkSize
		if end > len(paths) {
			end = len(paths)
		}
		slog.Info("Processing chunk", "from", start+1, "to", end, "total", len(paths))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.workerLimit())
		for i := start; i < end; i++ {
			g.Go(func() error {
				items[i] = s.processImage(gctx, paths[i])
				return nil
			})
		}
		// workers never return errors, so this only joins the chunk
		g.Wait()
	}

	return items
}

// processImage produces the ReceiptItem for one input file. Every failure
// mode is absorbed here: a cached item short-circuits the call, a permanent
// scan failure yields the error-sentinel triple, and unparseable responses
// fall through the parser's own defaults.
func (s *Service) processImage(ctx context.Context, path string) ReceiptItem {
	filename := filepath.Base(path)

	if s.cache != nil {
		if item, ok, err := s.cache.Get(filename); err != nil {
			slog.Warn("Cache lookup failed", "filename", filename, "error", err)
		} else if ok {
			slog.Info("Skipping cached image", "filename", filename)
			return item
		}
	}

	extraction := s.extractImage(ctx, path, filename)
	item := NewReceiptItem(
		filename,
		extraction.PatientName,
		extraction.HospitalName,
		ParseAmount(extraction.Amount),
	)

	// error-sentinel items stay out of the cache so a rerun retries them
	if s.cache != nil && extraction.PatientName != scanning.ErrorName {
		if err := s.cache.Put(item); err != nil {
			slog.Warn("Cache write failed", "filename", filename, "error", err)
		}
	}
	return item
}

// extractImage runs one classification call and parses the response,
// converting any failure into the error-sentinel extraction
func (s *Service) extractImage(ctx context.Context, path, filename string) scanning.Extraction {
	data, err := s.files.Read(path)
	if err != nil {
		slog.Error("Failed to read image", "filename", filename, "error", err)
		return scanning.ErrorExtraction()
	}

	raw, err := s.scanner.Scan(ctx, data, contentTypeFor(path))
	if err != nil {
		slog.Error("Failed to scan image",
			"filename", filename,
			"file_size", len(data),
			"error", err,
		)
		return scanning.ErrorExtraction()
	}

	return scanning.ParseResponse(raw)
}
