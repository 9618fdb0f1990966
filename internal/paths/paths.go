package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode tells whether the binary runs from a packaged install or from a
// development checkout.
type Mode string

const (
	ModePackaged    Mode = "packaged"
	ModeDevelopment Mode = "development"
)

// devEnv forces development mode when set to "1".
const devEnv = "SPECTRA_DEV"

// Layout holds the resolved application directories.
type Layout struct {
	Mode Mode
	Root string
}

// Resolve computes the application root for the current process.
// A packaged run uses the directory containing the executable; a development
// run uses the project root (nearest ancestor of the working directory with a go.mod).
func Resolve() (*Layout, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	if !isDevelopment(exe) {
		return &Layout{Mode: ModePackaged, Root: filepath.Dir(exe)}, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	return &Layout{Mode: ModeDevelopment, Root: projectRoot(wd)}, nil
}

// New returns a layout rooted at an explicit directory.
func New(mode Mode, root string) *Layout {
	return &Layout{Mode: mode, Root: root}
}

// isDevelopment reports whether exe looks like a `go run` build or the
// environment asks for development mode.
func isDevelopment(exe string) bool {
	if os.Getenv(devEnv) == "1" {
		return true
	}
	tmp, err := filepath.EvalSymlinks(os.TempDir())
	if err != nil {
		tmp = os.TempDir()
	}
	return strings.HasPrefix(exe, tmp+string(filepath.Separator))
}

// projectRoot walks up from dir looking for go.mod. Falls back to dir.
func projectRoot(dir string) string {
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func (l *Layout) ConfigDir() string { return filepath.Join(l.Root, "config") }
func (l *Layout) DataDir() string   { return filepath.Join(l.Root, "data") }
func (l *Layout) LogDir() string    { return filepath.Join(l.Root, "logs") }

// ConfigFile is the settings JSON file.
func (l *Layout) ConfigFile() string { return filepath.Join(l.ConfigDir(), "settings.json") }

// SamplesFile is the persisted sample selection.
func (l *Layout) SamplesFile() string { return filepath.Join(l.DataDir(), "samples.json") }

// LogFile is the rotating application log.
func (l *Layout) LogFile() string { return filepath.Join(l.LogDir(), "spectra.log") }

// EnsureDirs creates config, data and logs directories if absent.
func (l *Layout) EnsureDirs() error {
	for _, dir := range []string{l.ConfigDir(), l.DataDir(), l.LogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
