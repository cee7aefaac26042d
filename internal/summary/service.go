package summary

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iryohi/receiptsum/internal/scanning"
)

// imageExtensions are the receipt file types picked up from the input
// folder, lowercase with dot
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".pdf", ".heic",
}

// FileSource reads input files. Abstracted so tests can feed images
// without touching the filesystem.
type FileSource interface {
	Read(path string) ([]byte, error)
}

type osFileSource struct{}

func (osFileSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// RunSummary reports what a completed run produced
type RunSummary struct {
	ImageCount  int
	GroupCount  int
	ErrorCount  int
	SummaryPath string
	DetailPath  string
}

// Service runs the extraction and aggregation pipeline for one folder of
// receipt images
type Service struct {
	scanner scanning.Scanner
	cache   Cache
	files   FileSource
	cfg     Config
}

// NewService creates a Service. cache may be nil to disable resumption.
func NewService(scanner scanning.Scanner, cache Cache, cfg Config) *Service {
	return &Service{
		scanner: scanner,
		cache:   cache,
		files:   osFileSource{},
		cfg:     cfg.withDefaults(),
	}
}

// NewServiceWithFiles creates a Service with a custom file source for testing
func NewServiceWithFiles(scanner scanning.Scanner, cache Cache, files FileSource, cfg Config) *Service {
	return &Service{
		scanner: scanner,
		cache:   cache,
		files:   files,
		cfg:     cfg.withDefaults(),
	}
}

// FindImages enumerates receipt files directly under folder, sorted by
// name so runs over the same folder are reproducible
func FindImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading input folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range imageExtensions {
			if ext == want {
				paths = append(paths, filepath.Join(folder, entry.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes every receipt image in folder and writes the summary and
// detail CSVs. Individual images may fail permanently; they appear in the
// output under the error sentinel rather than aborting the run. Both files
// are written whenever at least one image was found.
func (s *Service) Run(ctx context.Context, folder string) (*RunSummary, error) {
	paths, err := FindImages(folder)
	if err != nil {
		return nil, err
	}
	slog.Info("Found receipt images", "count", len(paths), "folder", folder)

	items := s.runBatches(ctx, paths)
	groups := Aggregate(items)

	detailPath := DetailPath(s.cfg.OutputPath)
	if err := WriteSummaryCSV(s.cfg.OutputPath, groups); err != nil {
		return nil, fmt.Errorf("writing summary csv: %w", err)
	}
	if err := WriteDetailCSV(detailPath, items); err != nil {
		return nil, fmt.Errorf("writing detail csv: %w", err)
	}

	errorCount := 0
	for _, item := range items {
		if item.PatientName == scanning.ErrorName && item.HospitalName == scanning.ErrorName {
			errorCount++
		}
	}

	return &RunSummary{
		ImageCount:  len(items),
		GroupCount:  len(groups),
		ErrorCount:  errorCount,
		SummaryPath: s.cfg.OutputPath,
		DetailPath:  detailPath,
	}, nil
}

// contentTypeFor guesses the MIME type from the file extension; the
// conversion layer sniffs further when extensions lie
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".heic":
		return "image/heic"
	case ".pdf":
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "image/jpeg"
}
