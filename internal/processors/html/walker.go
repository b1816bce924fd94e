package html

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// walker collects block elements from a parsed HTML tree.
type walker struct {
	title    string
	elements []domain.StructuredElement
	loose    []string
	headings [3]string
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if t := collapse(n.Data); t != "" {
			w.loose = append(w.loose, t)
		}
		return
	case html.ElementNode:
		if w.element(n) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// element handles block-level nodes and reports whether n was consumed.
func (w *walker) element(n *html.Node) bool {
	if skipped[n.DataAtom] {
		return true
	}
	switch n.DataAtom {
	case atom.Title:
		w.title = collapse(textOf(n))
		return true
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		w.heading(int(n.Data[1]-'0'), collapse(textOf(n)))
		return true
	case atom.P:
		w.flush()
		w.emit(domain.ElementParagraph, collapse(textOf(n)), nil)
		return true
	case atom.Pre:
		w.flush()
		w.emit(domain.ElementCodeBlock, strings.Trim(textOf(n), "\n"), nil)
		return true
	case atom.Blockquote:
		w.flush()
		w.emit(domain.ElementQuote, collapse(textOf(n)), nil)
		return true
	case atom.Li:
		w.flush()
		w.emit(domain.ElementListItem, collapse(ownText(n)), nil)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
				w.walk(c)
			}
		}
		return true
	case atom.Table:
		w.flush()
		w.emit(domain.ElementTable, tableText(n), nil)
		return true
	case atom.Img:
		w.flush()
		alt, src := attr(n, "alt"), attr(n, "src")
		text := alt
		if text == "" {
			text = src
		}
		var meta map[string]string
		if src != "" {
			meta = map[string]string{"src": src}
		}
		w.emit(domain.ElementImage, text, meta)
		return true
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Body, atom.Ul, atom.Ol, atom.Br, atom.Hr:
		w.flush()
	}
	return false
}

func (w *walker) heading(level int, text string) {
	t := domain.HeadingType(level)
	lv := t.HeadingLevel()
	if text == "" {
		return
	}
	w.headings[lv-1] = text
	for i := lv; i < len(w.headings); i++ {
		w.headings[i] = ""
	}
	w.emit(t, text, nil)
}

func (w *walker) emit(t domain.ElementType, text string, meta map[string]string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	var parts []string
	for _, h := range w.headings {
		if h != "" {
			parts = append(parts, h)
		}
	}
	w.elements = append(w.elements, domain.StructuredElement{
		Type:        t,
		Text:        text,
		SectionPath: strings.Join(parts, " > "),
		Metadata:    meta,
	})
}

// flush emits text found outside any block element as a paragraph.
func (w *walker) flush() {
	if len(w.loose) == 0 {
		return
	}
	text := strings.Join(w.loose, " ")
	w.loose = nil
	w.emit(domain.ElementParagraph, text, nil)
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// ownText is the text of a list item without its nested lists.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
			continue
		}
		b.WriteString(textOf(c))
		b.WriteString(" ")
	}
	return b.String()
}

func tableText(n *html.Node) string {
	var rows []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
					cells = append(cells, collapse(textOf(c)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(rows, "\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
