package markdown

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatter is the YAML header some Markdown files carry.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// body. Text without such a block is returned unchanged. On a YAML error the
// block is still removed from the body.
func splitFrontMatter(text string) (frontMatter, string, error) {
	var fm frontMatter
	if !strings.HasPrefix(text, "---\n") {
		return fm, text, nil
	}
	rest := text[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") {
		return fm, rest[len("---\n"):], nil
	}

	end, skip := -1, 0
	for _, closer := range []string{"\n---\n", "\n...\n"} {
		if i := strings.Index(rest, closer); i >= 0 && (end < 0 || i < end) {
			end, skip = i, len(closer)
		}
	}
	if end < 0 {
		for _, closer := range []string{"\n---", "\n..."} {
			if strings.HasSuffix(rest, closer) {
				end, skip = len(rest)-len(closer), len(closer)
			}
		}
	}
	if end < 0 {
		// An opening rule with no closer is a thematic break, not a header.
		return fm, text, nil
	}

	header, body := rest[:end], rest[end+skip:]
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontMatter{}, body, err
	}
	return fm, body, nil
}
