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
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/classifier"
	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/invoice"
	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/preview"
	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/seed"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// newLogger builds the process logger from the level and format flags
func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want text or json", format)
	}
}

// newClassifier returns the model-backed category fallback selected by kind
func newClassifier(kind, geminiKey, geminiModel, ollamaURL, ollamaModel string) (classifier.Classifier, error) {
	switch kind {
	case "gemini":
		if geminiKey == "" {
			geminiKey = os.Getenv("GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini classifier...", "model", geminiModel)
		return classifier.NewGemini(geminiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama classifier...", "url", ollamaURL, "model", ollamaModel)
		return classifier.NewOllama(ollamaURL, ollamaModel)
	default:
		return nil, fmt.Errorf("invalid classifier type %q: want gemini or ollama", kind)
	}
}

// splitList parses a comma-separated flag value
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("invoice-intel")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "invoice-intel.db", "Database file path")
		storagePath = fs.StringLong("storage", "./invoices", "Document storage directory path")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		seedData    = fs.BoolLong("seed", "Load the demo dataset when the store is empty")
		seedFile    = fs.StringLong("seed-file", "", "YAML dataset to load instead of the embedded demo data")
		seedForce   = fs.BoolLong("seed-force", "Load seed data even when the store already has records")
		previewSize = fs.IntLong("preview-size", preview.DefaultMaxSize, "Longest edge of document previews in pixels")
		mlEnabled   = fs.BoolLong("ml-categorization", "Ask a model for a category when no rule matches")
		clsType     = fs.StringLong("classifier", "gemini", "Classifier type: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llama3.2", "Ollama model name")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat   = fs.StringLong("log-format", "text", "Log format: text or json")
		corsOrigins = fs.StringLong("cors-origins", "*", "Comma-separated list of allowed CORS origins")
		_           = fs.StringLong("config", "", "Config file path (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_INTEL"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Initialize database
	slog.Info("Initializing database...", "path", *dbPath)
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *seedData || *seedFile != "" {
		data := seed.Default
		if *seedFile != "" {
			if data, err = os.ReadFile(*seedFile); err != nil {
				slog.Error("Failed to read seed file", "path", *seedFile, "error", err)
				os.Exit(1)
			}
		}
		if _, err := seed.Load(db, data, *seedForce, time.Now()); err != nil {
			slog.Error("Failed to load seed data", "error", err)
			os.Exit(1)
		}
	}

	// Initialize storage
	slog.Info("Initializing storage...", "path", *storagePath)
	store, err := invoice.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	var cls classifier.Classifier
	if *mlEnabled {
		cls, err = newClassifier(*clsType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize classifier", "error", err)
			os.Exit(1)
		}
		defer cls.Close()
	}

	// Initialize service
	invoiceService := invoice.NewService(db, store, preview.NewThumbnailer(*previewSize), cls)

	// Initialize server
	server := invoice.NewServer(invoiceService, invoice.Options{
		BasicAuth: invoice.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		},
		AllowedOrigins: splitList(*corsOrigins),
		Version:        version,
	})

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}
	if cls != nil {
		slog.Info("Model categorization enabled", "classifier", *clsType)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}
