package platform

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix separators")
	}

	tests := []struct {
		path  string
		elems []string
	}{
		{"/a/b/c", []string{"a", "b", "c"}},
		{"/a/b/", []string{"a", "b"}},
		{"/a/./b", []string{"a", "b"}},
		{"/", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			volume, elems := Components(tt.path)
			assert.Empty(t, volume)
			assert.Equal(t, tt.elems, elems)
			assert.Equal(t, filepath.Clean(tt.path), JoinComponents(volume, elems))
		})
	}
}

func TestValidatePath(t *testing.T) {
	require.NoError(t, ValidatePath("/snapshots"))

	err := ValidatePath("")
	require.Error(t, err)
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "invalid path '': path is empty", err.Error())
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute(filepath.Join(string(filepath.Separator), "snapshots")) || runtime.GOOS == "windows")
	assert.False(t, IsAbsolute("snapshots"))
}
