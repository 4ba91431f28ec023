package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	// Convert to platform-specific separators
	normalized := filepath.Clean(filepath.FromSlash(path))

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(path string) bool {
	if IsUNCPath(path) {
		return true
	}
	return filepath.IsAbs(path)
}

// Components splits a path into its volume and its non-empty elements.
// Trailing separators are ignored, so "/a/b/" and "/a/b" split the same way.
func Components(path string) (volume string, elems []string) {
	normalized := NormalizePath(path)
	volume = filepath.VolumeName(normalized)
	rest := strings.TrimPrefix(normalized, volume)

	for _, e := range strings.Split(rest, string(filepath.Separator)) {
		if e != "" && e != "." {
			elems = append(elems, e)
		}
	}
	return volume, elems
}

// JoinComponents rebuilds an absolute path from a volume and its elements
func JoinComponents(volume string, elems []string) string {
	root := volume + string(filepath.Separator)
	if len(elems) == 0 {
		return root
	}
	return root + strings.Join(elems, string(filepath.Separator))
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
