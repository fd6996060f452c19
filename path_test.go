package fsgate_test

import (
	"path/filepath"
	"testing"

	"github.com/sagarc03/fsgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPath(t *testing.T) {
	tt := []struct {
		Name string
		Path string
		Want bool
	}{
		// Basics
		{Name: "root path", Path: "/", Want: true},
		{Name: "empty path", Path: "", Want: false},
		{Name: "leading slash", Path: "/some/path", Want: true},
		{Name: "no leading slash", Path: "dir1/file3", Want: true},
		{Name: "ends with slash", Path: "some/path/", Want: true},
		{Name: "single dot", Path: ".", Want: true},

		// Parent traversal
		{Name: "parent only", Path: "..", Want: false},
		{Name: "parent twice", Path: "../..", Want: false},
		{Name: "parent hidden in middle", Path: "/hello/../world/../..", Want: false},
		{Name: "dot then parent", Path: "./..", Want: false},
		{Name: "dot parent file", Path: "./../there.jpg", Want: false},
		{Name: "backslash parent", Path: `dir1\..\..\etc`, Want: false},
		{Name: "trailing parent", Path: "/a/..", Want: false},

		// Double dots inside a name are not traversal
		{Name: "double dots in filename", Path: "/a/b..c", Want: true},
		{Name: "double dots prefix", Path: "/a/..b", Want: true},
		{Name: "triple dots", Path: "/a/...", Want: true},

		// NUL
		{Name: "contains NUL", Path: "some\x00path/file.ext", Want: false},

		// Encoded input is not decoded
		{Name: "percent encoded parent", Path: "a/%2e%2e/b", Want: true},
		{Name: "unicode", Path: "привет/世界/file.ext", Want: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, fsgate.IsValidPath(tc.Path), "path %q", tc.Path)
		})
	}
}

func TestValidatePath(t *testing.T) {
	dataDir := filepath.Join("srv", "data")

	t.Run("root", func(t *testing.T) {
		p, err := fsgate.ValidatePath(dataDir, "/")
		require.NoError(t, err)
		assert.Equal(t, "/", p.RelativePath)
		assert.Equal(t, dataDir, p.AbsolutePath)
		assert.Equal(t, ".", p.Name)
	})

	t.Run("nested file", func(t *testing.T) {
		p, err := fsgate.ValidatePath(dataDir, "/dir1/file3")
		require.NoError(t, err)
		assert.Equal(t, "/dir1/file3", p.RelativePath)
		assert.Equal(t, filepath.Join(dataDir, "dir1", "file3"), p.AbsolutePath)
		assert.Equal(t, "dir1/file3", p.Name)
	})

	t.Run("name is cleaned", func(t *testing.T) {
		p, err := fsgate.ValidatePath(dataDir, "./dir1//sub/./file/")
		require.NoError(t, err)
		assert.Equal(t, "dir1/sub/file", p.Name)
	})

	t.Run("dot is root", func(t *testing.T) {
		p, err := fsgate.ValidatePath(dataDir, ".")
		require.NoError(t, err)
		assert.Equal(t, ".", p.Name)
	})

	for _, illegal := range []string{"", "..", "../..", "/hello/../world/../..", "./..", "./../there.jpg"} {
		t.Run("rejects "+illegal, func(t *testing.T) {
			_, err := fsgate.ValidatePath(dataDir, illegal)
			assert.ErrorIs(t, err, fsgate.ErrInvalidPath)
		})
	}
}
