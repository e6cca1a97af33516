package convert

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Inkscape 1.0 replaced the 0.x export flags with a new argument layout.
var layoutBreak = semver.MustParse("1.0.0")

var versionRun = regexp.MustCompile(`[0-9.]+`)

// inkscapeVersion queries and caches the Inkscape version. The binary is
// asked once per process; every conversion reuses the parsed result.
type inkscapeVersion struct {
	bin  string
	once sync.Once
	ver  *semver.Version
	err  error
}

func (v *inkscapeVersion) get(ctx context.Context) (*semver.Version, error) {
	v.once.Do(func() {
		out, err := commandContext(ctx, v.bin, "--version").Output() //nolint:gosec
		if err != nil {
			v.err = fmt.Errorf("querying inkscape version: %w", err)

			return
		}

		v.ver, v.err = ParseVersion(string(out))
	})

	return v.ver, v.err
}

// ParseVersion extracts a version triple from an `inkscape --version`
// banner. The first run of digits and dots is taken and right-padded with
// zeros to major.minor.patch:
//
//	"Inkscape 0.92.4 (unknown)"  → 0.92.4
//	"Inkscape 1.1-dev (3a9df5b)" → 1.1.0
//	"Inkscape 1.0rc1"            → 1.0.0
func ParseVersion(banner string) (*semver.Version, error) {
	run := versionRun.FindString(banner)
	if run == "" {
		return nil, fmt.Errorf("no version number in %q", banner)
	}

	var triple [3]uint64

	parts := strings.Split(strings.Trim(run, "."), ".")
	for i, part := range parts {
		if i >= len(triple) {
			break
		}

		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing version %q: %w", run, err)
		}

		triple[i] = n
	}

	return semver.New(triple[0], triple[1], triple[2], "", ""), nil
}

// exportArgs builds the Inkscape invocation for exporting svgPath to
// pdfPath with a PDF_TEX companion. Versions below 1.0.0 use the legacy
// flag layout.
func exportArgs(version *semver.Version, svgPath, pdfPath string, dpi int) []string {
	dpiArg := strconv.Itoa(dpi)

	if version.LessThan(layoutBreak) {
		return []string{
			"--export-area-page",
			"--export-dpi", dpiArg,
			"--export-pdf", pdfPath,
			"--export-latex",
			svgPath,
		}
	}

	return []string{
		svgPath,
		"--export-area-page",
		"--export-dpi", dpiArg,
		"--export-type=pdf",
		"--export-latex",
		"--export-filename", pdfPath,
	}
}
