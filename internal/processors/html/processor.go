// Package html extracts readable text and block structure from HTML files.
package html

import (
	"context"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/processors/textio"
)

// Ensure Processor implements the interface.
var _ driven.DocumentProcessor = (*Processor)(nil)

// Processor handles HTML documents.
type Processor struct {
	fs afero.Fs
}

// New creates an HTML processor reading from the OS filesystem.
func New() *Processor {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs creates an HTML processor reading from fs.
func NewWithFs(fs afero.Fs) *Processor {
	return &Processor{fs: fs}
}

// Name returns "html".
func (p *Processor) Name() string { return "html" }

// SupportedExtensions returns the HTML extensions.
func (p *Processor) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportsStructuredExtraction reports true for every HTML extension.
func (p *Processor) SupportsStructuredExtraction(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range p.SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// ExtractText returns the visible text with one block per line.
func (p *Processor) ExtractText(_ context.Context, path string) (string, error) {
	text, err := textio.Read(p.fs, path)
	if err != nil {
		return "", err
	}
	return stripHTML(text), nil
}

// ExtractStructuredContent parses the document into typed block elements.
func (p *Processor) ExtractStructuredContent(_ context.Context, path string) (*domain.StructuredDocument, error) {
	text, err := textio.Read(p.fs, path)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	w := &walker{}
	w.walk(root)
	w.flush()

	title := w.title
	if title == "" {
		for _, el := range w.elements {
			if el.Type == domain.ElementHeading1 {
				title = el.Text
				break
			}
		}
	}
	if title == "" {
		title = textio.TitleFromPath(path)
	}
	return &domain.StructuredDocument{Title: title, Elements: w.elements}, nil
}

var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	comments          = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	closeBlocks       = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	lineBreaks        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag            = regexp.MustCompile(`<[^>]+>`)
	spaceRuns         = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes invisible elements and tags, keeping one text block per line.
func stripHTML(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, comments} {
		content = re.ReplaceAllString(content, "")
	}
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = closeBlocks.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = stdhtml.UnescapeString(content)
	content = spaceRuns.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
