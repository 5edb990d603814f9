package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/core"
	"github.com/joseph-ayodele/deal-scanner/internal/core/ocr"
	"github.com/joseph-ayodele/deal-scanner/internal/email"
	"github.com/joseph-ayodele/deal-scanner/internal/export"
	"github.com/joseph-ayodele/deal-scanner/internal/ingest"
	"github.com/joseph-ayodele/deal-scanner/internal/llm"
	"github.com/joseph-ayodele/deal-scanner/internal/llm/openai"
	"github.com/joseph-ayodele/deal-scanner/internal/repository"
)

const usageExamples = `
Examples:
  # Process a single email
  deal-scanner -f marketing-emails/neptune.eml -o output.csv

  # Process a directory and write a summary
  deal-scanner -d marketing-emails/ -o pipeline_deals.csv -s summary.txt

  # Write a workbook and keep a run ledger
  deal-scanner -d marketing-emails/ -o deals.xlsx --ledger ./ledger.db
`

type options struct {
	file      string
	directory string
	output    string
	summary   string
	format    string
	appendTo  bool
	apiKey    string
	model     string
	baseURL   string
	tesseract string
	engine    string
	ledger    string
	verbose   bool
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("deal-scanner", flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Commercial real estate email scanner\n\nUsage: deal-scanner (-f FILE | -d DIR) -o OUTPUT [options]\n\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprint(out, usageExamples)
	}

	fs.StringVar(&o.file, "file", "", "single email file to process")
	fs.StringVar(&o.file, "f", "", "shorthand for --file")
	fs.StringVar(&o.directory, "directory", "", "directory containing .eml files (searched recursively)")
	fs.StringVar(&o.directory, "d", "", "shorthand for --directory")
	fs.StringVar(&o.output, "output", "", "output file path (.csv or .xlsx, required)")
	fs.StringVar(&o.output, "o", "", "shorthand for --output")
	fs.StringVar(&o.summary, "summary", "", "summary report file path")
	fs.StringVar(&o.summary, "s", "", "shorthand for --summary")
	fs.StringVar(&o.format, "format", "", "output format: csv or xlsx (default from output extension)")
	fs.BoolVar(&o.appendTo, "append", false, "append rows to an existing CSV instead of overwriting it")
	fs.StringVar(&o.apiKey, "api-key", "", "LLM API key (or set OPENAI_API_KEY)")
	fs.StringVar(&o.model, "model", "", "LLM model (or set OPENAI_MODEL)")
	fs.StringVar(&o.baseURL, "base-url", "", "OpenAI-compatible API base URL (or set OPENAI_BASE_URL)")
	fs.StringVar(&o.tesseract, "tesseract", "", "path to the tesseract executable (or set TESSERACT_PATH)")
	fs.StringVar(&o.engine, "engine", "tesseract", "OCR engine: "+strings.Join(engines, ", "))
	fs.StringVar(&o.ledger, "ledger", "", "run ledger DSN: sqlite file path or postgres:// URL (or set LEDGER_DSN)")
	fs.BoolVar(&o.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&o.verbose, "v", false, "shorthand for --verbose")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, common.NewAppError(common.CodeInput, "unexpected arguments: "+strings.Join(fs.Args(), " "), common.ErrInvalidInput)
	}
	if o.format == "" {
		o.format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.output)), ".")
		if o.format != "xlsx" {
			o.format = "csv"
		}
	}
	o.format = strings.ToLower(o.format)

	v := common.NewValidator().
		Check((o.file == "") != (o.directory == ""), "file/directory", nil, "exactly one of --file or --directory is required").
		Field("output", o.output, common.Required).
		Field("format", o.format, common.OneOf("csv", "xlsx")).
		Check(!o.appendTo || o.format == "csv", "append", o.appendTo, "is only supported for csv output")
	if v.HasErrors() {
		return nil, v.Error()
	}
	return o, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// run returns the process exit code: 0 only when the output file was written.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	o, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		printError("Error: %v\n", err)
		return 2
	}

	logger := newLogger(stdout, o.verbose)
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}
	cfg := common.LoadConfig()
	applyOverrides(cfg, o)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	// Discover inputs
	discoverer := ingest.NewFSDiscoverer(true, logger)
	var paths []string
	if o.file != "" {
		p, err := discoverer.File(ctx, o.file)
		if err != nil {
			logger.Error("input not usable", "error", err)
			return 1
		}
		paths = []string{p}
	} else {
		found, _, err := discoverer.Directory(ctx, o.directory)
		if err != nil {
			logger.Error("input not usable", "error", err)
			return 1
		}
		paths = found
	}
	logger.Info("found email files to process", "count", len(paths))

	// Optional ledger
	var ledger core.Ledger
	if cfg.Ledger.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Ledger.DSN,
			MaxConns:        cfg.Ledger.MaxConns,
			MinConns:        cfg.Ledger.MinConns,
			MaxConnLifetime: cfg.Ledger.MaxConnLifetime,
			DialTimeout:     cfg.Ledger.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open ledger", "error", err)
			return 1
		}
		defer db.Close()
		ledger = repository.NewRunLedger(db, logger)
	}

	processor, err := wire(cfg, o.engine, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return 1
	}

	report, err := core.NewRunner(processor, ledger, cfg.OCR.ArtifactDir, logger).Run(ctx, paths)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	exporter := export.NewService(logger)
	ok := true
	rows := exporter.Rows(report.Results)
	if len(rows) == 0 {
		logger.Warn("no successful extractions, no output written")
		ok = false
	} else {
		var werr error
		if o.format == "xlsx" {
			werr = exporter.WriteXLSX(o.output, rows)
		} else {
			werr = exporter.WriteCSV(o.output, rows, o.appendTo)
		}
		if werr != nil {
			logger.Error("failed to write output", "path", o.output, "error", werr)
			ok = false
		}
	}

	if o.summary != "" {
		if err := exporter.WriteSummary(o.summary, report.Results); err != nil {
			logger.Error("failed to write summary", "path", o.summary, "error", err)
			ok = false
		}
	}

	printStats(stdout, report, o.output, ok)
	if !ok {
		logger.Error("email scanning failed")
		return 1
	}
	logger.Info("email scanning completed", "run_id", report.RunID.String(), "rows", len(rows))
	return 0
}

func applyOverrides(cfg *common.Config, o *options) {
	if o.apiKey != "" {
		cfg.LLM.APIKey = o.apiKey
	}
	if o.model != "" {
		cfg.LLM.Model = o.model
	}
	if o.baseURL != "" {
		cfg.LLM.BaseURL = o.baseURL
	}
	if o.tesseract != "" {
		cfg.OCR.TesseractPath = o.tesseract
	}
	if o.ledger != "" {
		cfg.Ledger.DSN = o.ledger
	}
}

// wire builds the per-email processor from config.
func wire(cfg *common.Config, engine string, logger *slog.Logger) (*core.Processor, error) {
	// LLM client (graceful if missing)
	var inferer llm.Inferer
	if cfg.LLM.APIKey != "" {
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		inferer = client
		logger.Info("LLM client initialized", "model", client.Model())
	} else {
		logger.Warn("LLM API key not configured, extraction will yield empty fields")
	}
	extractor := llm.NewExtractor(inferer, llm.ExtractorConfig{MaxInputChars: cfg.LLM.MaxInputChars}, logger)

	// OCR
	runner := ocr.ExecRunner{Logger: logger}
	recognizer, err := newRecognizer(engine, ocr.TesseractConfig{
		Binary:      cfg.OCR.TesseractPath,
		Lang:        cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
	}, runner, logger)
	if err != nil {
		return nil, err
	}
	aggregator := ocr.NewAggregator(ocr.Config{
		TokenMinConfidence: cfg.OCR.TokenMinConfidence,
		Pdftoppm:           cfg.OCR.PdftoppmPath,
		ScratchDir:         cfg.OCR.ArtifactDir,
		FileTimeout:        cfg.OCR.Timeout,
	}, recognizer, runner, logger)

	// Email access
	parser := email.NewMIMEParser(logger)
	materializer := email.NewMaterializer(email.NewHTTPFetcher(cfg.Fetch, logger), logger)

	return core.NewProcessor(parser, extractor, aggregator, materializer, core.ProcessorConfig{
		MergeMinConfidence: cfg.OCR.MergeMinConfidence,
	}, logger), nil
}

func printStats(w io.Writer, report *core.Report, output string, ok bool) {
	s := report.Stats
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }
	p("%s\n", strings.Repeat("=", 50))
	p("PROCESSING STATISTICS\n")
	p("%s\n", strings.Repeat("=", 50))
	p("Total emails processed: %d\n", s.TotalProcessed)
	p("Successful extractions: %d\n", s.Successful)
	p("Success rate: %.1f%%\n", s.SuccessRate())
	p("OCR usage: %d emails\n", s.OCRUsed)
	p("Errors: %d\n", s.Errors)
	if ok {
		p("Output: %s\n", output)
	}
	p("%s\n", strings.Repeat("=", 50))
}
