// Package util holds small text helpers shared by the API and services.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleDashes  = regexp.MustCompile(`-+`)
)

// Slug turns a chapter title into a URL fragment.
//
//	"Setup & Install"   -> "setup-install"
//	"Café Basics"       -> "cafe-basics"
//	"⌨️ (0:00) Intro"  -> "0-00-intro"
func Slug(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
