// Package convert turns stabilized figure-source changes into
// document-embeddable artifacts. SVG sources are exported to PDF (+ the
// PDF_TEX companion) via Inkscape; Affinity Designer sources are first
// exported to SVG. After every successful conversion the LaTeX include
// snippet lands on the system clipboard.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/hupe1980/figwatch/internal/latex"
)

// Test seams, following the usual exec.CommandContext override pattern.
var (
	commandContext = exec.CommandContext
	clipboardWrite = clipboard.WriteAll
)

// Options configures a Converter.
type Options struct {
	// InkscapeBin is the Inkscape executable.
	InkscapeBin string

	// ExportDPI is the resolution for the PDF export.
	ExportDPI int

	// Snippet renders the clipboard include snippet.
	Snippet *latex.Snippet

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// Converter classifies changed files and dispatches conversions. It is
// stateless apart from the lazily cached Inkscape version; HandleChange may
// be called concurrently for different paths.
type Converter struct {
	inkscapeBin string
	exportDPI   int
	snippet     *latex.Snippet
	logger      *slog.Logger
	inkscape    *inkscapeVersion
}

// New constructs a Converter from opts.
func New(opts Options) (*Converter, error) {
	if opts.InkscapeBin == "" {
		opts.InkscapeBin = "inkscape"
	}

	if opts.ExportDPI <= 0 {
		opts.ExportDPI = 300
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	snippet := opts.Snippet
	if snippet == nil {
		s, err := latex.NewSnippet("")
		if err != nil {
			return nil, err
		}

		snippet = s
	}

	return &Converter{
		inkscapeBin: opts.InkscapeBin,
		exportDPI:   opts.ExportDPI,
		snippet:     snippet,
		logger:      opts.Logger,
		inkscape:    &inkscapeVersion{bin: opts.InkscapeBin},
	}, nil
}

// HandleChange classifies a stabilized change and runs the matching
// conversion. It never returns an error: it executes inside the watch loop,
// where every failure is absorbed and logged.
func (c *Converter) HandleChange(ctx context.Context, path string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		// standard open vector format, handled below

	case ".afdesign":
		c.logger.Info("exporting design file to SVG", slog.String("path", path))

		svgPath, err := c.exportAfdesign(ctx, path)
		if err != nil {
			c.logger.Error("design export failed",
				slog.String("path", path),
				slog.String("error", err.Error()))

			return
		}

		path = svgPath

	default:
		c.logger.Debug("ignoring unsupported file",
			slog.String("path", path),
			slog.String("ext", filepath.Ext(path)))

		return
	}

	if err := c.convertSVG(ctx, path); err != nil {
		c.logger.Error("conversion failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// convertSVG exports path to a sibling PDF plus PDF_TEX companion and
// copies the include snippet to the clipboard.
func (c *Converter) convertSVG(ctx context.Context, path string) error {
	c.logger.Info("recompiling figure", slog.String("path", path))

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pdfPath := filepath.Join(filepath.Dir(path), name+".pdf")

	version, err := c.inkscape.get(ctx)
	if err != nil {
		return err
	}

	args := exportArgs(version, path, pdfPath, c.exportDPI)

	c.logger.Debug("running inkscape", slog.String("args", strings.Join(args, " ")))

	cmd := commandContext(ctx, c.inkscapeBin, args...) //nolint:gosec
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitCodeError{Code: exitErr.ExitCode()}
		}

		return err
	}

	snippet, err := c.snippet.Render(name, latex.Beautify(name))
	if err != nil {
		return err
	}

	if err := clipboardWrite(snippet); err != nil {
		c.logger.Warn("could not copy snippet to clipboard",
			slog.String("error", err.Error()))

		return nil
	}

	c.logger.Info("include snippet copied to clipboard", slog.String("figure", name))

	return nil
}

// ExitCodeError reports a converter process that ran but exited non-zero.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("inkscape exited with code %d", e.Code)
}
