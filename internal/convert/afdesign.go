package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// exportScript drives Affinity Designer's export dialog via System Events.
// Affinity has no headless export, so the UI is scripted: open the export
// sheet, pick the SVG tab, and save into the figure's directory.
const exportScript = `
tell application "Affinity Designer 2"
	activate
end tell

set originalVolume to alert volume of (get volume settings)
set volume alert volume 0
delay 0.1

tell application "System Events"
	tell process "Affinity Designer 2"
		keystroke "s" using {command down, shift down, option down}
		delay 0.2
		keystroke "2" using {command down}
		delay 0.2
		try
			click button "Export" of window 1
		end try
		keystroke "g" using {command down, shift down}
		delay 1
		keystroke "%s"
		delay 0.2
		keystroke return
		delay 0.4
		click button "Save" of splitter group 1 of sheet 1 of window 1
	end tell
end tell

delay 0.2
set volume alert volume originalVolume
`

// exportAfdesign materializes an SVG next to an Affinity Designer source,
// deleting any stale export first, and returns the SVG path. Only
// supported on macOS.
func (c *Converter) exportAfdesign(ctx context.Context, path string) (string, error) {
	if runtime.GOOS != "darwin" {
		return "", fmt.Errorf("afdesign export requires macOS")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	dir := filepath.Dir(abs)
	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	svgPath := filepath.Join(dir, stem+".svg")

	if _, err := os.Stat(svgPath); err == nil {
		c.logger.Info("deleting stale SVG export", slog.String("path", svgPath))

		if err := os.Remove(svgPath); err != nil {
			return "", fmt.Errorf("removing stale export: %w", err)
		}
	}

	script := fmt.Sprintf(exportScript, dir)

	cmd := commandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running export script: %w", err)
	}

	return svgPath, nil
}
