package pathfilter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Match(t *testing.T) {
	root := filepath.FromSlash("/docs")
	f, err := New(root, []string{"**/*.md", "*.txt"}, []string{"drafts/**"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"/docs/readme.md", true},
		{"/docs/guide/install.md", true},
		{"/docs/notes.txt", true},
		{"/docs/deep/notes.txt", true},
		{"/docs/image.png", false},
		{"/docs/drafts/wip.md", false},
		{"/docs/.git/config.md", false},
		{"/docs/file.tmp", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(filepath.FromSlash(tt.path)))
		})
	}
}

func TestFilter_EmptyIncludeMatchesAll(t *testing.T) {
	f, err := New("/docs", nil, nil)
	require.NoError(t, err)

	assert.True(t, f.Match("/docs/anything.bin"))
	assert.False(t, f.Match("/docs/node_modules/pkg/index.js"))
}

func TestFilter_SkipDir(t *testing.T) {
	f, err := New("/docs", nil, []string{"drafts/**"})
	require.NoError(t, err)

	assert.True(t, f.SkipDir("/docs/drafts"))
	assert.True(t, f.SkipDir("/docs/.git"))
	assert.False(t, f.SkipDir("/docs/guide"))
	assert.False(t, f.SkipDir("/docs"))
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New("/docs", []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
