package util

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// StripTags removes markup such as the <i> and <font> tags some caption files
// carry, decodes entities and collapses whitespace. Text without a '<' is only
// whitespace-collapsed.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return collapse(html.UnescapeString(s))
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapse(html.UnescapeString(htmlTagRegex.ReplaceAllString(s, " ")))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return collapse(buf.String())
}

func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br", "p", "div", "li":
			buf.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
}

// Snippet prepares passage text for display: tags stripped, newlines
// flattened, and cut to at most limit characters (runes, not bytes).
func Snippet(text string, limit int) string {
	s := StripTags(text)
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
