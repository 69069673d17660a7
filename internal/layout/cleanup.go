package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	md          = goldmark.New()
	citationRE  = regexp.MustCompile(`\[\d+(?:\s*[,–-]\s*\d+)*\]`)
	spaceRunRE  = regexp.MustCompile(`[ \t]{2,}`)
	quoteOpener = "«“„\""
)

// Cleanup turns generated markdown into plain source lines: headings lose
// their markup, emphasis is dropped, list items get a bullet or their
// number, blockquotes are wrapped in guillemets, citation markers such as
// [3] are removed and blank lines are collapsed.
func Cleanup(src string) []string {
	source := []byte(strings.ReplaceAll(src, "\r\n", "\n"))
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if b := strings.TrimSpace(block(n, source, "")); b != "" {
			blocks = append(blocks, b)
		}
	}

	var out []string
	for _, b := range blocks {
		for _, line := range strings.Split(b, "\n") {
			line = strings.TrimSpace(spaceRunRE.ReplaceAllString(citationRE.ReplaceAllString(line, ""), " "))
			if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
				continue
			}
			out = append(out, line)
		}
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func block(n ast.Node, src []byte, indent string) string {
	switch n := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		return inline(n, src)
	case *ast.List:
		var items []string
		num := n.Start
		for it := n.FirstChild(); it != nil; it = it.NextSibling() {
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			var parts []string
			for c := it.FirstChild(); c != nil; c = c.NextSibling() {
				if _, nested := c.(*ast.List); nested {
					parts = append(parts, block(c, src, indent+"  "))
					continue
				}
				parts = append(parts, block(c, src, indent))
			}
			items = append(items, indent+marker+strings.Join(parts, "\n"))
		}
		return strings.Join(items, "\n")
	case *ast.Blockquote:
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, block(c, src, indent))
		}
		q := strings.TrimSpace(strings.Join(parts, "\n"))
		if q == "" || strings.ContainsRune(quoteOpener, []rune(q)[0]) {
			return q
		}
		return "«" + q + "»"
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		return b.String()
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return ""
	default:
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, block(c, src, indent))
		}
		return strings.Join(parts, "\n")
	}
}

func inline(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				b.Write(c.Segment.Value(src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					b.WriteByte('\n')
				}
			case *ast.String:
				b.Write(c.Value)
			case *ast.AutoLink:
				b.Write(c.Label(src))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}
