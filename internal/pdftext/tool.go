package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// ToolStrategyName identifies the external pdftotext strategy in attempt logs.
const ToolStrategyName = "pdftotext"

// ToolConfig configures the pdftotext strategy.
type ToolConfig struct {
	Binary         string
	VariantTimeout time.Duration
	TempDir        string
	// MinTextLength is the trimmed length a variant must exceed to stop the strategy.
	MinTextLength int
}

type toolVariant struct {
	name  string
	flags []string
}

// Variants in precedence order. Each run writes to its own output file.
var toolVariants = []toolVariant{
	{name: "utf8-layout", flags: []string{"-enc", "UTF-8", "-layout"}},
	{name: "layout", flags: []string{"-layout"}},
	{name: "raw", flags: []string{"-raw"}},
	{name: "default"},
}

// ToolStrategy extracts text by shelling out to pdftotext.
type ToolStrategy struct {
	cfg    ToolConfig
	runner Runner
}

// NewToolStrategy creates a ToolStrategy. A nil runner uses ExecRunner.
func NewToolStrategy(cfg ToolConfig, runner Runner) *ToolStrategy {
	if cfg.Binary == "" {
		cfg.Binary = "pdftotext"
	}
	if cfg.VariantTimeout <= 0 {
		cfg.VariantTimeout = 15 * time.Second
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 20
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &ToolStrategy{cfg: cfg, runner: runner}
}

func (s *ToolStrategy) Name() string { return ToolStrategyName }

// Budget is the longest the strategy can take: every variant timing out and
// then waiting out the runner's pipe delay.
func (s *ToolStrategy) Budget() time.Duration {
	return time.Duration(len(toolVariants))*(s.cfg.VariantTimeout+defaultWaitDelay) + time.Second
}

func (s *ToolStrategy) Extract(ctx context.Context, doc Document) []Outcome {
	outcomes := make([]Outcome, 0, len(toolVariants))
	s.ExtractTo(ctx, doc, func(o Outcome) { outcomes = append(outcomes, o) })
	return outcomes
}

// ExtractTo runs the variants in order, reporting each outcome as it finishes.
func (s *ToolStrategy) ExtractTo(ctx context.Context, doc Document, report func(Outcome)) {
	start := time.Now()
	ws, err := newWorkspace(s.cfg.TempDir, "pdftext")
	if err != nil {
		report(Outcome{Variant: "setup", Err: s.execErr("setup", err), Elapsed: time.Since(start)})
		return
	}
	defer ws.cleanup()

	input, err := ws.writeFile("input.pdf", doc.Bytes())
	if err != nil {
		report(Outcome{Variant: "setup", Err: s.execErr("setup", err), Elapsed: time.Since(start)})
		return
	}

	for i, v := range toolVariants {
		if ctx.Err() != nil {
			report(Outcome{
				Variant: v.name,
				Err:     &StrategyTimeoutError{Strategy: ToolStrategyName, Variant: v.name, Budget: s.Budget()},
			})
			return
		}

		o := s.runVariant(ctx, v, input, ws.path(fmt.Sprintf("output-%d.txt", i)))
		report(o)

		if o.Err == nil && utf8.RuneCountInString(strings.TrimSpace(o.Text)) > s.cfg.MinTextLength {
			return
		}
		// Every remaining variant would fail the same way.
		var missing *ToolMissingError
		if errors.As(o.Err, &missing) {
			return
		}
	}
}

func (s *ToolStrategy) runVariant(ctx context.Context, v toolVariant, input, output string) Outcome {
	vctx, cancel := context.WithTimeout(ctx, s.cfg.VariantTimeout)
	defer cancel()

	args := make([]string, 0, len(v.flags)+2)
	args = append(args, v.flags...)
	args = append(args, input, output)

	start := time.Now()
	_, stderr, err := s.runner.Run(vctx, s.cfg.Binary, args...)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
			err = s.execErr(v.name, &ToolMissingError{Tool: s.cfg.Binary, Err: err})
		case vctx.Err() != nil:
			err = &StrategyTimeoutError{Strategy: ToolStrategyName, Variant: v.name, Budget: s.cfg.VariantTimeout}
		default:
			if msg := strings.TrimSpace(string(stderr)); msg != "" {
				err = fmt.Errorf("%w: %s", err, truncate(msg, 512))
			}
			err = s.execErr(v.name, err)
		}
		return Outcome{Variant: v.name, Err: err, Elapsed: elapsed}
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return Outcome{Variant: v.name, Err: s.execErr(v.name, fmt.Errorf("reading output: %w", err)), Elapsed: elapsed}
	}

	text := strings.ToValidUTF8(string(data), "")
	if strings.TrimSpace(text) == "" {
		return Outcome{Variant: v.name, Err: s.execErr(v.name, ErrEmptyOutput), Elapsed: elapsed}
	}
	return Outcome{Variant: v.name, Text: text, Elapsed: elapsed}
}

func (s *ToolStrategy) execErr(variant string, err error) error {
	return &StrategyExecutionError{Strategy: ToolStrategyName, Variant: variant, Err: err}
}
