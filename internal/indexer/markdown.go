package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParser parses markdown sources before chunking: it extracts a
// display title from the heading structure and flattens the AST to plain
// text so the chunker sees prose instead of markup.
type markdownParser struct {
	parser goldmark.Markdown
}

func newMarkdownParser() *markdownParser {
	return &markdownParser{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Parse returns the document title and flattened plain text. fallbackTitle is
// used when the document has no level-1 or level-2 heading.
func (m *markdownParser) Parse(content []byte, fallbackTitle string) (title, plain string) {
	if len(content) == 0 {
		return fallbackTitle, ""
	}

	doc := m.parser.Parser().Parse(text.NewReader(content))

	title = extractTitle(doc, content, fallbackTitle)
	plain = flatten(doc, content)
	return title, plain
}

// extractTitle picks the first # heading, the first ## heading if no # exists,
// and otherwise the fallback.
func extractTitle(doc ast.Node, content []byte, fallback string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(heading, content)
		switch {
		case heading.Level == 1 && firstH1 == "":
			firstH1 = headingText
			return ast.WalkStop, nil
		case heading.Level == 2 && firstH2 == "":
			firstH2 = headingText
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return fallback
}

// flatten walks the AST and emits the text content with block boundaries as
// newlines, dropping markup.
func flatten(doc ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(content))
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			ensureNewline(&b)
		default:
			// Table rows from the table extension render one row per line
			kind := n.Kind().String()
			if strings.Contains(kind, "TableRow") || strings.Contains(kind, "TableHeader") {
				ensureNewline(&b)
				b.WriteString(tableRowText(n, content))
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func ensureNewline(b *strings.Builder) {
	s := b.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}

// nodeText extracts the text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// tableRowText joins the cells of a table row with pipe separators.
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			cells = append(cells, nodeText(node, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(cells, " | ")
}
