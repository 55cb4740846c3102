package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OCRStrategyName identifies the optical recognition strategy in attempt logs.
const OCRStrategyName = "ocr"

// OCRConfig configures the optional OCR strategy.
type OCRConfig struct {
	Pdftoppm    string
	Tesseract   string
	Language    string
	DPI         int
	MaxPages    int
	PageTimeout time.Duration
	TempDir     string
}

// OCRStrategy rasterises the first pages with pdftoppm and recognises them
// with tesseract.
type OCRStrategy struct {
	cfg    OCRConfig
	runner Runner
}

// NewOCRStrategy creates an OCRStrategy. A nil runner uses ExecRunner.
func NewOCRStrategy(cfg OCRConfig, runner Runner) *OCRStrategy {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &OCRStrategy{cfg: cfg, runner: runner}
}

func (s *OCRStrategy) Name() string { return OCRStrategyName }

// Budget covers rasterising plus recognising every page, each possibly
// followed by the runner's pipe delay.
func (s *OCRStrategy) Budget() time.Duration {
	return time.Duration(s.cfg.MaxPages+1)*(s.cfg.PageTimeout+defaultWaitDelay) + time.Second
}

func (s *OCRStrategy) Extract(ctx context.Context, doc Document) []Outcome {
	start := time.Now()
	variant := "tesseract-" + s.cfg.Language
	text, err := s.recognise(ctx, doc)
	if err != nil {
		var timeout *StrategyTimeoutError
		if !errors.As(err, &timeout) {
			err = &StrategyExecutionError{Strategy: OCRStrategyName, Variant: variant, Err: err}
		}
		return []Outcome{{Variant: variant, Err: err, Elapsed: time.Since(start)}}
	}
	if strings.TrimSpace(text) == "" {
		err = &StrategyExecutionError{Strategy: OCRStrategyName, Variant: variant, Err: ErrEmptyOutput}
	}
	return []Outcome{{Variant: variant, Text: text, Err: err, Elapsed: time.Since(start)}}
}

func (s *OCRStrategy) recognise(ctx context.Context, doc Document) (string, error) {
	ws, err := newWorkspace(s.cfg.TempDir, "pdfocr")
	if err != nil {
		return "", err
	}
	defer ws.cleanup()

	input, err := ws.writeFile("input.pdf", doc.Bytes())
	if err != nil {
		return "", err
	}

	prefix := ws.path("page")
	if err := s.run(ctx, s.cfg.Pdftoppm, "-r", strconv.Itoa(s.cfg.DPI), "-f", "1", "-l", strconv.Itoa(s.cfg.MaxPages), "-png", input, prefix); err != nil {
		return "", err
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) > s.cfg.MaxPages {
		images = images[:s.cfg.MaxPages]
	}
	if len(images) == 0 {
		return "", errors.New("pdftoppm produced no images")
	}

	pages := make([]string, 0, len(images))
	var lastErr error
	for _, img := range images {
		out, err := s.output(ctx, s.cfg.Tesseract, img, "stdout", "-l", s.cfg.Language)
		if err != nil {
			var missing *ToolMissingError
			if errors.As(err, &missing) {
				return "", err
			}
			lastErr = err
			continue
		}
		if t := strings.TrimSpace(out); t != "" {
			pages = append(pages, t)
		}
	}
	if len(pages) == 0 && lastErr != nil {
		return "", lastErr
	}
	return strings.Join(pages, "\n\n"), nil
}

func (s *OCRStrategy) run(ctx context.Context, name string, args ...string) error {
	_, err := s.output(ctx, name, args...)
	return err
}

func (s *OCRStrategy) output(ctx context.Context, name string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
	defer cancel()

	stdout, stderr, err := s.runner.Run(cctx, name, args...)
	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
			return "", &ToolMissingError{Tool: name, Err: err}
		case cctx.Err() != nil:
			return "", &StrategyTimeoutError{Strategy: OCRStrategyName, Variant: filepath.Base(name), Budget: s.cfg.PageTimeout}
		default:
			return "", fmt.Errorf("%s: %w: %s", filepath.Base(name), err, truncate(strings.TrimSpace(string(stderr)), 512))
		}
	}
	return string(stdout), nil
}
