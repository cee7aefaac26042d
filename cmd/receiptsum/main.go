package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/iryohi/receiptsum/internal/scanning"
	"github.com/iryohi/receiptsum/internal/summary"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("receiptsum")
	var (
		output      = fs.StringLong("output", "medical_receipts_data.csv", "Summary CSV output path (detail CSV derives from it)")
		batchSize   = fs.IntLong("batch-size", summary.DefaultChunkSize, "Number of images processed per batch")
		cachePath   = fs.StringLong("cache", "", "Result cache file for resumable runs (empty disables)")
		scannerType = fs.StringLong("scanner", "openai", "Scanner type: 'openai' or 'gemini'")
		openaiKey   = fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		openaiModel = fs.StringLong("openai-model", "gpt-4o-2024-11-20", "OpenAI model name")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTSUM"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	args := fs.GetArgs()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: exactly one receipt image folder is required")
		os.Exit(1)
	}
	folder := args[0]

	var scanner scanning.Scanner
	var err error
	switch *scannerType {
	case "openai":
		apiKey := *openaiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("OpenAI API key is required. Set --openai-key flag or OPENAI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing OpenAI scanner...", "model", *openaiModel)
		scanner, err = scanning.NewOpenAI(apiKey, *openaiModel)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "openai or gemini")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize scanner", "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	var cache summary.Cache
	if *cachePath != "" {
		slog.Info("Initializing result cache...", "path", *cachePath)
		boltCache, err := summary.NewBoltCache(*cachePath)
		if err != nil {
			slog.Error("Failed to initialize cache", "error", err)
			os.Exit(1)
		}
		defer boltCache.Close()
		cache = boltCache
	}

	cfg := summary.Config{
		OutputPath: *output,
		ChunkSize:  *batchSize,
	}
	service := summary.NewService(scanning.NewRetryScanner(scanner), cache, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := service.Run(ctx, folder)
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Run complete",
		"images", result.ImageCount,
		"groups", result.GroupCount,
		"errors", result.ErrorCount,
		"summary", result.SummaryPath,
		"detail", result.DetailPath,
	)
}
