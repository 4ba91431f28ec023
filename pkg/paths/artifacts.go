package paths

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// Artifact is one failing snapshot found on disk through its Diff image
type Artifact struct {
	// Root is the <module>Snapshots directory
	Root  string
	Group string
	Name  string

	Diff      string
	Failure   string
	Reference string

	// DiffSize is the size of the diff image in bytes
	DiffSize int64
}

// Sibling swaps the image type segment of an artifact path
func Sibling(root, path string, from, to models.ImageType) (string, error) {
	rel, err := filepath.Rel(filepath.Join(root, from.DirectoryName()), path)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, to.DirectoryName(), rel), nil
}

// ListDiffs enumerates the .png files in root/Diff/group
func ListDiffs(ctx context.Context, fs storage.FileSystem, root, group string) ([]Artifact, error) {
	dir := filepath.Join(root, models.ImageDiff.DirectoryName(), group)
	files, err := fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	var out []Artifact
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Path), ".png") {
			continue
		}
		a, err := artifactFor(root, group, f)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Diff < out[j].Diff })
	return out, nil
}

// FindArtifacts scans base for every <module>Snapshots/Diff/<group>/*.png
func FindArtifacts(ctx context.Context, fs storage.FileSystem, base string) ([]Artifact, error) {
	files, err := fs.List(ctx, base)
	if err != nil {
		return nil, err
	}

	var out []Artifact
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Path), ".png") {
			continue
		}
		root, group, ok := splitArtifactPath(base, f.Path, models.ImageDiff)
		if !ok {
			continue
		}
		a, err := artifactFor(root, group, f)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Diff < out[j].Diff })
	return out, nil
}

// FindSnapshotRoots returns every <module>Snapshots directory below base that holds files
func FindSnapshotRoots(ctx context.Context, fs storage.FileSystem, base string) ([]string, error) {
	files, err := fs.List(ctx, base)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var roots []string
	for _, f := range files {
		for _, t := range models.ImageTypes {
			root, _, ok := splitArtifactPath(base, f.Path, t)
			if ok && !seen[root] {
				seen[root] = true
				roots = append(roots, root)
			}
		}
	}
	sort.Strings(roots)
	return roots, nil
}

// splitArtifactPath finds the <module>Snapshots/<type>/<group>/ segment of path
func splitArtifactPath(base, path string, imageType models.ImageType) (root, group string, ok bool) {
	if strings.HasSuffix(filepath.Base(base), SnapshotsSuffix) {
		base = filepath.Dir(base)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := 0; i+3 < len(parts); i++ {
		if strings.HasSuffix(parts[i], SnapshotsSuffix) && parts[i+1] == imageType.DirectoryName() {
			root = filepath.Join(base, filepath.FromSlash(strings.Join(parts[:i+1], "/")))
			return root, parts[i+2], true
		}
	}
	return "", "", false
}

func artifactFor(root, group string, f storage.FileInfo) (Artifact, error) {
	failure, err := Sibling(root, f.Path, models.ImageDiff, models.ImageFailure)
	if err != nil {
		return Artifact{}, err
	}
	reference, err := Sibling(root, f.Path, models.ImageDiff, models.ImageReference)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Root:      root,
		Group:     group,
		Name:      filepath.Base(f.Path),
		Diff:      f.Path,
		Failure:   failure,
		Reference: reference,
		DiffSize:  f.Size,
	}, nil
}
