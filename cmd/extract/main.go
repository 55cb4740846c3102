// Command extract runs the PDF text extraction pipeline over local files and
// prints one JSON report per file.
//
// Usage:
//
//	extract [-concurrency N] [-preview N] [-text] file.pdf|dir ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"talentmatch/internal/config"
	"talentmatch/internal/logging"
	"talentmatch/internal/pdftext"
	"talentmatch/internal/service"
)

type report struct {
	File         string      `json:"file"`
	Bytes        int         `json:"bytes"`
	Success      bool        `json:"success"`
	Strategy     string      `json:"strategy,omitempty"`
	Variant      string      `json:"variant,omitempty"`
	QualityScore float64     `json:"quality_score"`
	TextLength   int         `json:"text_length"`
	ElapsedMS    int64       `json:"elapsed_ms"`
	Hint         string      `json:"hint,omitempty"`
	Error        string      `json:"error,omitempty"`
	Text         string      `json:"text,omitempty"`
	Attempts     interface{} `json:"attempts,omitempty"`
}

func main() {
	concurrency := flag.Int("concurrency", 4, "files processed in parallel")
	preview := flag.Int("preview", 300, "runes of extracted text to include (0 for none)")
	fullText := flag.Bool("text", false, "include the full extracted text")
	attempts := flag.Bool("attempts", false, "include the per-attempt log")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	// Reports go to stdout; keep logs on stderr.
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	files, err := collect(flag.Args())
	if err != nil {
		logger.Error("collecting input files", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [-concurrency N] [-preview N] [-text] [-attempts] file.pdf|dir ...")
		os.Exit(2)
	}

	extractor, err := pdftext.NewExtractor(&cfg.Extraction, nil, pdftext.WithLogger(logger))
	if err != nil {
		logger.Error("building extractor", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports := make([]report, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			reports[i] = extractFile(gctx, extractor, path, *preview, *fullText, *attempts)
			return gctx.Err()
		})
	}
	waitErr := g.Wait()

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	failed := 0
	for i := range reports {
		if reports[i].File == "" {
			continue
		}
		if !reports[i].Success {
			failed++
		}
		if err := enc.Encode(&reports[i]); err != nil {
			logger.Error("writing report", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("extraction finished", "files", len(files), "failed", failed)
	if waitErr != nil {
		logger.Error("interrupted", "error", waitErr)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(3)
	}
}

func extractFile(ctx context.Context, e *pdftext.Extractor, path string, preview int, fullText, withAttempts bool) report {
	rep := report{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Bytes = len(data)

	res, err := e.Extract(ctx, data)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}

	rep.Success = res.Succeeded
	rep.Strategy = res.Strategy
	rep.Variant = res.Variant
	rep.QualityScore = res.BestScore
	rep.TextLength = len([]rune(res.Text))
	rep.ElapsedMS = res.TotalElapsed.Milliseconds()
	rep.Hint = res.Hint()
	switch {
	case fullText:
		rep.Text = res.Text
	case preview > 0:
		rep.Text = service.TruncateRunes(res.Text, preview)
	}
	if withAttempts {
		rep.Attempts = service.AttemptViews(res.Attempts)
	}
	return rep
}

// collect expands directories into the PDF files they contain.
func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
