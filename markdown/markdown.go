// Package markdown flattens markdown replies into plain chat text using
// goldmark for parsing. Generators tend to answer with emphasis markers,
// headings and bullet lists that a chat bubble would show literally.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Plain returns source with markdown syntax removed. Block structure is kept
// as line breaks; links keep their destination in parentheses.
func Plain(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	walkBlocks(doc, src, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func walkBlocks(node ast.Node, source []byte, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		renderBlock(c, source, buf)
	}
}

func renderBlock(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		buf.WriteString(collectInline(n, source))
		buf.WriteString("\n")

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.WriteString(strings.TrimRight(string(line.Value(source)), "\n"))
			buf.WriteString("\n")
		}

	case *ast.List:
		renderList(n, source, buf, 0)

	case *ast.ThematicBreak, *ast.HTMLBlock:
		// Dropped.

	default:
		walkBlocks(node, source, buf)
	}
}

func renderList(node *ast.List, source []byte, buf *bytes.Buffer, depth int) {
	num := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		indent := strings.Repeat("  ", depth)
		first := true
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.List:
				renderList(in, source, buf, depth+1)
			case *ast.Paragraph, *ast.TextBlock:
				prefix := indent + strings.Repeat(" ", len(marker))
				if first {
					prefix = indent + marker
					first = false
				}
				buf.WriteString(prefix + collectInline(in, source) + "\n")
			default:
				renderBlock(ic, source, buf)
			}
		}
	}
}

func collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		renderInline(c, source, &buf)
	}
	return buf.String()
}

func renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Link:
		label := collectInline(n, source)
		url := string(n.Destination)
		buf.WriteString(label)
		if url != "" && url != label {
			buf.WriteString(" (" + url + ")")
		}

	case *ast.AutoLink:
		buf.Write(n.URL(source))

	case *ast.Image:
		buf.WriteString(collectInline(n, source))

	case *ast.RawHTML:
		// Dropped.

	default:
		// Emphasis, code spans and anything unrecognized keep their text.
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			renderInline(c, source, buf)
		}
	}
}
