package paths

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// SnapshotsSuffix is appended to the module name to form the snapshot root
const SnapshotsSuffix = "Snapshots"

// Resolver derives artifact paths for snapshot assertions and manages the files behind them.
// Layout: <base>/<module>Snapshots/<ImageType>/<Group>/<slug>_<layout>@<scale>x[_<suffix>].png
type Resolver struct {
	fs          storage.FileSystem
	base        BaseDir
	nativeScale float64
}

// NewResolver creates a resolver storing files through fs under base.
// nativeScale is the density written into filenames for native-scale assertions.
func NewResolver(fs storage.FileSystem, base BaseDir, nativeScale float64) *Resolver {
	if nativeScale <= 0 {
		nativeScale = 1
	}
	return &Resolver{fs: fs, base: base, nativeScale: nativeScale}
}

// NativeScale returns the density used for native-scale assertions
func (r *Resolver) NativeScale() float64 {
	return r.nativeScale
}

// FileSystem returns the underlying filesystem
func (r *Resolver) FileSystem() storage.FileSystem {
	return r.fs
}

// SnapshotRoot returns <base>/<module>Snapshots for an identity
func (r *Resolver) SnapshotRoot(ctx context.Context, id models.Identity) (string, error) {
	base, err := r.base.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, id.Module+SnapshotsSuffix), nil
}

// FileName returns the artifact filename for a configuration
func (r *Resolver) FileName(cfg models.SnapshotConfig) string {
	scale := models.FormatFloat(cfg.Scale.ExplicitOrScreenNativeValue(r.nativeScale))
	name := fmt.Sprintf("%s_%s@%sx", Slug(cfg.Identity.Function), cfg.Layout.FileValue(), scale)
	if cfg.Suffix != "" {
		name += "_" + cfg.Suffix
	}
	return name + ".png"
}

// Directory returns the folder holding artifacts of one image type for the configuration's group
func (r *Resolver) Directory(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) (string, error) {
	root, err := r.SnapshotRoot(ctx, cfg.Identity)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, imageType.DirectoryName(), cfg.Identity.Group), nil
}

// Path returns the full artifact path. It does not touch the filesystem.
func (r *Resolver) Path(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid snapshot config: %w", err)
	}
	dir, err := r.Directory(ctx, cfg, imageType)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, r.FileName(cfg)), nil
}

// EnsureDirectory creates the directory of path; an existing directory is fine
func (r *Resolver) EnsureDirectory(ctx context.Context, path string) error {
	return r.fs.MkdirAll(ctx, filepath.Dir(path))
}

// Exists reports whether the artifact is on disk
func (r *Resolver) Exists(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) (bool, error) {
	path, err := r.Path(ctx, cfg, imageType)
	if err != nil {
		return false, err
	}
	return r.fs.Exists(ctx, path)
}

// Read returns the artifact bytes
func (r *Resolver) Read(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) ([]byte, error) {
	path, err := r.Path(ctx, cfg, imageType)
	if err != nil {
		return nil, err
	}
	return r.fs.ReadFile(ctx, path)
}

// Write stores data as the artifact, creating its directory first, and returns the path written
func (r *Resolver) Write(ctx context.Context, data []byte, cfg models.SnapshotConfig, imageType models.ImageType) (string, error) {
	path, err := r.Path(ctx, cfg, imageType)
	if err != nil {
		return "", err
	}
	if err := r.EnsureDirectory(ctx, path); err != nil {
		return "", err
	}
	if err := r.fs.WriteFile(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes the artifact; a missing file is not an error
func (r *Resolver) Remove(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) error {
	path, err := r.Path(ctx, cfg, imageType)
	if err != nil {
		return err
	}
	return r.fs.Remove(ctx, path)
}

// StoreDiffAndFailure writes the diff overlay and the failing render side by side.
// Both writes are attempted; the returned error combines whichever failed.
func (r *Resolver) StoreDiffAndFailure(ctx context.Context, diff, failure []byte, cfg models.SnapshotConfig) (diffPath, failurePath string, err error) {
	var result *multierror.Error

	diffPath, werr := r.Write(ctx, diff, cfg, models.ImageDiff)
	if werr != nil {
		result = multierror.Append(result, fmt.Errorf("diff image: %w", werr))
	}
	failurePath, werr = r.Write(ctx, failure, cfg, models.ImageFailure)
	if werr != nil {
		result = multierror.Append(result, fmt.Errorf("failure image: %w", werr))
	}
	return diffPath, failurePath, result.ErrorOrNil()
}

// RemoveDiffAndFailure deletes stale mismatch artifacts after a passing comparison
func (r *Resolver) RemoveDiffAndFailure(ctx context.Context, cfg models.SnapshotConfig) error {
	var result *multierror.Error
	for _, t := range []models.ImageType{models.ImageDiff, models.ImageFailure} {
		if err := r.Remove(ctx, cfg, t); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
