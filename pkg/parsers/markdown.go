package parsers

import (
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(meta.Meta, extension.Table),
)

// markdownDoc is a parsed markdown file: its front matter, the body that
// follows it, and the block-level AST used for structural lookups.
type markdownDoc struct {
	src  []byte
	root ast.Node
	meta map[string]interface{}
	body string
}

func parseMarkdown(path string, content []byte) (*markdownDoc, error) {
	pctx := parser.NewContext()
	root := markdownParser.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	fm, err := meta.TryGet(pctx)
	if err != nil {
		return nil, malformed(path, err, "front matter")
	}

	body := string(content)
	if fm != nil {
		body = extractBodyContent(body)
	}

	return &markdownDoc{
		src:  content,
		root: root,
		meta: fm,
		body: body,
	}, nil
}

// extractBodyContent removes YAML front matter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\r\n")
}

// firstHeading returns the text of the first heading of the given level.
func (m *markdownDoc) firstHeading(level int) (string, bool) {
	for n := m.root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == level {
			if t := inlineText(h, m.src); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// firstParagraph returns the first top-level paragraph, skipping headings,
// lists and code.
func (m *markdownDoc) firstParagraph() (string, bool) {
	for n := m.root.FirstChild(); n != nil; n = n.NextSibling() {
		if p, ok := n.(*ast.Paragraph); ok {
			if t := inlineText(p, m.src); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// section returns the blocks under the first heading whose title contains
// any of the given names (case-insensitive). The section ends at the next
// heading of the same or a higher level.
func (m *markdownDoc) section(names ...string) (string, []ast.Node) {
	var (
		title string
		level int
		nodes []ast.Node
	)
	for n := m.root.FirstChild(); n != nil; n = n.NextSibling() {
		h, isHeading := n.(*ast.Heading)
		if level == 0 {
			if isHeading && h.Level <= 3 && titleMatches(inlineText(h, m.src), names) {
				title = inlineText(h, m.src)
				level = h.Level
			}
			continue
		}
		if isHeading && h.Level <= level {
			break
		}
		nodes = append(nodes, n)
	}
	return title, nodes
}

func titleMatches(title string, names []string) bool {
	lower := strings.ToLower(title)
	for _, name := range names {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// sectionItems returns the text of every list item in the named section.
func (m *markdownDoc) sectionItems(names ...string) (string, []string) {
	title, nodes := m.section(names...)
	var items []string
	for _, n := range nodes {
		list, ok := n.(*ast.List)
		if !ok {
			continue
		}
		for item := list.FirstChild(); item != nil; item = item.NextSibling() {
			if block := item.FirstChild(); block != nil {
				if t := inlineText(block, m.src); t != "" {
					items = append(items, t)
				}
			}
		}
	}
	return title, items
}

// sectionParagraph returns the first paragraph of the named section.
func (m *markdownDoc) sectionParagraph(names ...string) (string, bool) {
	_, nodes := m.section(names...)
	for _, n := range nodes {
		if p, ok := n.(*ast.Paragraph); ok {
			if t := inlineText(p, m.src); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// hasCodeBlock reports whether the document contains a fenced code block.
func (m *markdownDoc) hasCodeBlock() bool {
	found := false
	_ = ast.Walk(m.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindFencedCodeBlock {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// tableColumn returns the cell text of the named column for every row of
// every table whose header has such a column.
func (m *markdownDoc) tableColumn(column string) []string {
	var values []string
	_ = ast.Walk(m.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		idx := -1
		for row := table.FirstChild(); row != nil; row = row.NextSibling() {
			switch row.(type) {
			case *east.TableHeader:
				idx = cellIndex(row, m.src, column)
			case *east.TableRow:
				if idx < 0 {
					continue
				}
				if cell := nthChild(row, idx); cell != nil {
					if t := inlineText(cell, m.src); t != "" {
						values = append(values, t)
					}
				}
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return values
}

func cellIndex(header ast.Node, src []byte, column string) int {
	i := 0
	for cell := header.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if strings.EqualFold(inlineText(cell, src), column) {
			return i
		}
		i++
	}
	return -1
}

func nthChild(n ast.Node, idx int) ast.Node {
	c := n.FirstChild()
	for i := 0; c != nil && i < idx; i++ {
		c = c.NextSibling()
	}
	return c
}

// inlineText concatenates the text of all inline descendants of n.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.List:
			if c != n {
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
