package markdown

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	atxHeading   = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	setextH1     = regexp.MustCompile(`^=+$`)
	setextH2     = regexp.MustCompile(`^-+$`)
	thematic     = regexp.MustCompile(`^(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	listItem     = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+(.*)$`)
	lonelyImage  = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)$`)
	tableDivider = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)

	inlineImage = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inlineLink  = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCode  = regexp.MustCompile("`([^`]+)`")
	strong      = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emphasis    = regexp.MustCompile(`(^|[\s(])[*_]([^*_\s][^*_]*)[*_]([\s).,;:!?]|$)`)
)

// parser turns Markdown lines into structured elements.
type parser struct {
	elements  []domain.StructuredElement
	paragraph []string
	headings  [3]string
}

func parse(body string) []domain.StructuredElement {
	p := &parser{}
	lines := strings.Split(body, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			p.flush()
			i = p.fence(lines, i)

		case trimmed == "":
			p.flush()

		case len(p.paragraph) == 1 && setextH1.MatchString(trimmed):
			text := p.paragraph[0]
			p.paragraph = nil
			p.heading(1, text)

		case len(p.paragraph) == 1 && setextH2.MatchString(trimmed):
			text := p.paragraph[0]
			p.paragraph = nil
			p.heading(2, text)

		case atxHeading.MatchString(trimmed):
			p.flush()
			m := atxHeading.FindStringSubmatch(trimmed)
			p.heading(len(m[1]), m[2])

		case thematic.MatchString(trimmed):
			p.flush()

		case lonelyImage.MatchString(trimmed):
			p.flush()
			m := lonelyImage.FindStringSubmatch(trimmed)
			text := m[1]
			if text == "" {
				text = m[2]
			}
			p.emit(domain.ElementImage, text, map[string]string{"src": m[2]})

		case strings.HasPrefix(trimmed, "|"):
			p.flush()
			i = p.table(lines, i)

		case strings.HasPrefix(trimmed, ">"):
			p.flush()
			i = p.quote(lines, i)

		case listItem.MatchString(line):
			p.flush()
			i = p.list(lines, i)

		default:
			p.paragraph = append(p.paragraph, trimmed)
		}
	}
	p.flush()
	return p.elements
}

func (p *parser) sectionPath() string {
	parts := make([]string, 0, len(p.headings))
	for _, h := range p.headings {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}

func (p *parser) emit(t domain.ElementType, text string, meta map[string]string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.elements = append(p.elements, domain.StructuredElement{
		Type:        t,
		Text:        text,
		SectionPath: p.sectionPath(),
		Metadata:    meta,
	})
}

func (p *parser) flush() {
	if len(p.paragraph) == 0 {
		return
	}
	p.emit(domain.ElementParagraph, stripInline(strings.Join(p.paragraph, " ")), nil)
	p.paragraph = nil
}

// heading records a heading. Levels 4-6 are folded into level 3.
func (p *parser) heading(level int, raw string) {
	t := domain.HeadingType(level)
	lv := t.HeadingLevel()
	text := stripInline(strings.TrimSpace(raw))
	if text == "" {
		return
	}
	p.headings[lv-1] = text
	for i := lv; i < len(p.headings); i++ {
		p.headings[i] = ""
	}
	p.emit(t, text, nil)
}

// fence consumes a fenced code block starting at lines[start] and returns
// the index of its closing line. An unclosed fence runs to the end.
func (p *parser) fence(lines []string, start int) int {
	open := strings.TrimSpace(lines[start])
	marker := open[:3]
	lang := strings.TrimSpace(strings.TrimLeft(open, marker[:1]))

	var code []string
	i := start + 1
	for ; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), marker) {
			break
		}
		code = append(code, lines[i])
	}

	var meta map[string]string
	if lang != "" {
		meta = map[string]string{"language": lang}
	}
	p.emit(domain.ElementCodeBlock, strings.Join(code, "\n"), meta)
	return i
}

func (p *parser) table(lines []string, start int) int {
	var rows []string
	i := start
	for ; i < len(lines); i++ {
		row := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(row, "|") {
			break
		}
		if tableDivider.MatchString(row) {
			continue
		}
		cells := strings.Split(strings.Trim(row, "|"), "|")
		for j := range cells {
			cells[j] = stripInline(strings.TrimSpace(cells[j]))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	p.emit(domain.ElementTable, strings.Join(rows, "\n"), nil)
	return i - 1
}

func (p *parser) quote(lines []string, start int) int {
	var parts []string
	i := start
	for ; i < len(lines); i++ {
		row := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(row, ">") {
			break
		}
		if row = strings.TrimSpace(strings.TrimLeft(row, ">")); row != "" {
			parts = append(parts, row)
		}
	}
	p.emit(domain.ElementQuote, stripInline(strings.Join(parts, " ")), nil)
	return i - 1
}

// list consumes consecutive items. Indented lines without a marker
// continue the previous item.
func (p *parser) list(lines []string, start int) int {
	var item []string
	meta := func(marker string) map[string]string {
		if marker[0] >= '0' && marker[0] <= '9' {
			return map[string]string{"ordered": "true"}
		}
		return nil
	}
	var itemMeta map[string]string
	emitItem := func() {
		if len(item) > 0 {
			p.emit(domain.ElementListItem, stripInline(strings.Join(item, " ")), itemMeta)
		}
		item = nil
	}

	i := start
	for ; i < len(lines); i++ {
		line := lines[i]
		if m := listItem.FindStringSubmatch(line); m != nil {
			emitItem()
			item = []string{strings.TrimSpace(m[2])}
			itemMeta = meta(m[1])
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (line[0] != ' ' && line[0] != '\t') {
			break
		}
		item = append(item, trimmed)
	}
	emitItem()
	return i - 1
}

// stripInline removes inline markup, keeping the visible text.
func stripInline(s string) string {
	s = inlineImage.ReplaceAllString(s, "$1")
	s = inlineLink.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = strong.ReplaceAllString(s, "$2")
	s = emphasis.ReplaceAllString(s, "$1$2$3")
	return strings.TrimSpace(s)
}

// render joins elements into plain text. List items and table rows stay on
// their own lines; other blocks are separated by a blank line.
func render(elements []domain.StructuredElement) string {
	var b strings.Builder
	for i, el := range elements {
		if i > 0 {
			if el.Type == domain.ElementListItem && elements[i-1].Type == domain.ElementListItem {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(el.Text)
	}
	return b.String()
}
