package paths

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"

	"github.com/sdejongh/pixeltest/internal/platform"
	"github.com/sdejongh/pixeltest/pkg/models"
)

// EnvBaseDir names the environment variable holding the snapshot root
const EnvBaseDir = "PIXELTEST_BASE_DIR"

// ErrMissingBaseDir is returned when no snapshot root is configured
var ErrMissingBaseDir = errors.New(EnvBaseDir + " is not set")

// SetupError is a configuration problem that must abort the run
// rather than fail a single assertion.
type SetupError struct {
	Reason string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return "pixeltest setup: " + e.Reason
	}
	return fmt.Sprintf("pixeltest setup: %s: %v", e.Reason, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// BaseDir resolves the directory snapshot folders live under.
// Resolution must depend only on the identity and the environment so that
// record and test runs agree.
type BaseDir interface {
	Resolve(ctx context.Context, id models.Identity) (string, error)
}

// EnvBase is a fixed root taken from configuration
type EnvBase struct {
	Dir string
}

// NewEnvBase creates a fixed base, failing when dir is empty
func NewEnvBase(dir string) (*EnvBase, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &SetupError{Reason: "snapshot base directory", Err: ErrMissingBaseDir}
	}
	if err := platform.ValidatePath(dir); err != nil {
		return nil, &SetupError{Reason: "snapshot base directory", Err: err}
	}
	if platform.IsAbsolute(dir) {
		return &EnvBase{Dir: platform.NormalizePath(dir)}, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &SetupError{Reason: "snapshot base directory", Err: err}
	}
	return &EnvBase{Dir: abs}, nil
}

// Resolve returns the configured directory
func (b *EnvBase) Resolve(ctx context.Context, id models.Identity) (string, error) {
	return b.Dir, nil
}

// SourceBase stores snapshots in a hidden directory beside the test source file
type SourceBase struct {
	Name string
}

// Resolve returns <dir of test file>/<Name>
func (b *SourceBase) Resolve(ctx context.Context, id models.Identity) (string, error) {
	if id.File == "" {
		return "", &SetupError{Reason: "source file of " + id.Function + " is unknown"}
	}
	name := b.Name
	if name == "" {
		name = ".pixeltest"
	}
	return filepath.Join(filepath.Dir(id.File), name), nil
}

// ModuleBase finds the Go module that owns the package under test by scanning
// SearchRoot for go.mod files, and stores snapshots in that module's directory.
type ModuleBase struct {
	SearchRoot string

	once    sync.Once
	modules map[string]string // module path -> directory
	scanErr error
}

// NewModuleBase creates a module resolver rooted at searchRoot
func NewModuleBase(searchRoot string) *ModuleBase {
	return &ModuleBase{SearchRoot: searchRoot}
}

// Resolve returns the directory of the module whose path is the longest prefix of id.Package
func (b *ModuleBase) Resolve(ctx context.Context, id models.Identity) (string, error) {
	b.once.Do(func() {
		b.modules, b.scanErr = FindModules(ctx, b.SearchRoot)
	})
	if b.scanErr != nil {
		return "", &SetupError{Reason: "scanning for go.mod files", Err: b.scanErr}
	}

	best, bestDir := "", ""
	for modPath, dir := range b.modules {
		if id.Package != modPath && !strings.HasPrefix(id.Package, modPath+"/") {
			continue
		}
		if len(modPath) > len(best) {
			best, bestDir = modPath, dir
		}
	}
	if bestDir == "" {
		return "", &SetupError{Reason: fmt.Sprintf("no module under %s owns package %q", b.SearchRoot, id.Package)}
	}
	return bestDir, nil
}

// skipDirs are never descended into while scanning for modules
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// FindModules walks root and maps each module path to the directory holding its go.mod
func FindModules(ctx context.Context, root string) (map[string]string, error) {
	modules := make(map[string]string)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			name := d.Name()
			if p != root && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "go.mod" {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		if modPath := modfile.ModulePath(data); modPath != "" {
			modules[modPath] = filepath.Dir(p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return modules, nil
}
