package domain

// ElementType classifies a structural element.
type ElementType string

// Element types produced by document processors.
const (
	ElementHeading1  ElementType = "heading1"
	ElementHeading2  ElementType = "heading2"
	ElementHeading3  ElementType = "heading3"
	ElementParagraph ElementType = "paragraph"
	ElementListItem  ElementType = "list_item"
	ElementCodeBlock ElementType = "code_block"
	ElementTable     ElementType = "table"
	ElementImage     ElementType = "image"
	ElementQuote     ElementType = "quote"
)

// IsHeading reports whether t is one of the heading levels.
func (t ElementType) IsHeading() bool {
	return t == ElementHeading1 || t == ElementHeading2 || t == ElementHeading3
}

// HeadingLevel returns 1-3 for headings and 0 otherwise.
func (t ElementType) HeadingLevel() int {
	switch t {
	case ElementHeading1:
		return 1
	case ElementHeading2:
		return 2
	case ElementHeading3:
		return 3
	default:
		return 0
	}
}

// HeadingType returns the element type for a heading level, clamped to 1-3.
func HeadingType(level int) ElementType {
	switch {
	case level <= 1:
		return ElementHeading1
	case level == 2:
		return ElementHeading2
	default:
		return ElementHeading3
	}
}

// StructuredElement is one typed element of a StructuredDocument.
type StructuredElement struct {
	Type        ElementType
	Text        string
	SectionPath string
	Metadata    map[string]string
}

// StructuredDocument is produced once per extraction, consumed by the
// chunking engine and then discarded. It is never persisted.
type StructuredDocument struct {
	Title    string
	Elements []StructuredElement
}

// TextElements returns the number of elements carrying text.
func (s *StructuredDocument) TextElements() int {
	if s == nil {
		return 0
	}
	n := 0
	for i := range s.Elements {
		if s.Elements[i].Text != "" {
			n++
		}
	}
	return n
}
