package paths

import (
	"github.com/sdejongh/pixeltest/internal/platform"
)

// CommonPath returns the longest shared directory prefix of absolute paths.
// It compares whole components, ignores trailing separators and returns the
// filesystem root when nothing is shared.
func CommonPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	volume, shared := platform.Components(paths[0])
	for _, p := range paths[1:] {
		vol, elems := platform.Components(p)
		if vol != volume {
			return platform.JoinComponents("", nil)
		}
		n := min(len(shared), len(elems))
		i := 0
		for i < n && shared[i] == elems[i] {
			i++
		}
		shared = shared[:i]
	}

	return platform.JoinComponents(volume, shared)
}
