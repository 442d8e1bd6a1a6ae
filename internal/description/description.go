// Package description prepares video description text for chapter extraction.
// Descriptions copied from a watch page often arrive as HTML; they are turned
// into Markdown so each chapter lands on its own line.
package description

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	// htmlTagPattern detects the tags descriptions actually use.
	htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6])[\s>/]`)

	// markdownEscape undoes the backslash escapes the converter adds to
	// characters like "*" and "-" that chapter titles use decoratively.
	markdownEscape = regexp.MustCompile(`\\([\\*_\-+.#!()\[\]{}<>|~` + "`" + `])`)

	// hardBreak is the converter's trailing-space line break.
	hardBreak = regexp.MustCompile(` {2,}\n`)
)

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Normalize returns description text ready for chapter extraction. Plain text
// only has its line endings normalized. If HTML conversion fails the input is
// returned unchanged.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" || !ContainsHTML(s) {
		return s
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	md = hardBreak.ReplaceAllString(md, "\n")
	md = markdownEscape.ReplaceAllString(md, "$1")
	return strings.TrimSpace(md)
}
