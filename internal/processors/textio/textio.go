// Package textio reads source files as normalised UTF-8 text.
package textio

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Read returns the content of path with a leading BOM removed and line
// endings normalised to "\n". Non UTF-8 content is reported as
// domain.ErrUnsupportedType.
func Read(fs afero.Fs, path string) (string, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrUnsupportedType, path)
	}
	return NormalizeNewlines(string(raw)), nil
}

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// TitleFromPath derives a display title from a file name.
func TitleFromPath(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
