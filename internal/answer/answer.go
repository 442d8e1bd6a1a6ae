// Package answer composes a reply from retrieved transcript passages.
package answer

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/util"
)

// NoAnswer is returned when retrieval found nothing to quote.
const NoAnswer = "I couldn't find anything in this video's transcript about that."

// Answerer turns a question and its ranked passages into a reply.
type Answerer interface {
	Answer(ctx context.Context, query string, passages []domain.LabeledDocument) (string, error)
}

// Extractive answers by quoting the passages that share the most words with
// the question, in ranked order.
type Extractive struct {
	// MaxPassages caps how many passages are quoted. Zero means 3.
	MaxPassages int
	// MaxChars caps each quote. Zero means 300.
	MaxChars int
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "this": {}, "to": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "with": {},
	"you": {}, "video": {},
}

// Terms returns the folded content words of s.
func Terms(s string) []string {
	fold := cases.Fold()
	var terms []string
	for _, w := range wordPattern.FindAllString(s, -1) {
		w = fold.String(w)
		if _, stop := stopWords[w]; stop || len(w) < 2 {
			continue
		}
		if !slices.Contains(terms, w) {
			terms = append(terms, w)
		}
	}
	return terms
}

// Overlap counts how many of terms occur in text.
func Overlap(terms []string, text string) int {
	words := make(map[string]struct{})
	for _, w := range Terms(text) {
		words[w] = struct{}{}
	}
	n := 0
	for _, t := range terms {
		if _, ok := words[t]; ok {
			n++
		}
	}
	return n
}

// Answer implements Answerer.
func (e Extractive) Answer(ctx context.Context, query string, passages []domain.LabeledDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return NoAnswer, nil
	}

	maxPassages := e.MaxPassages
	if maxPassages <= 0 {
		maxPassages = 3
	}
	maxChars := e.MaxChars
	if maxChars <= 0 {
		maxChars = 300
	}

	// Passages with no word in common with the question are only used when
	// nothing overlaps at all; the ranked order is kept either way.
	terms := Terms(query)
	picked := make([]domain.LabeledDocument, 0, maxPassages)
	for _, p := range passages {
		if len(picked) == maxPassages {
			break
		}
		if len(terms) == 0 || Overlap(terms, p.Text) > 0 {
			picked = append(picked, p)
		}
	}
	if len(picked) == 0 {
		picked = passages[:min(maxPassages, len(passages))]
	}

	var b strings.Builder
	if title := picked[0].ChapterTitle; title != "" && title != domain.UnknownChapter {
		fmt.Fprintf(&b, "This is covered in %q.\n", title)
	}
	for _, p := range picked {
		fmt.Fprintf(&b, "\n[%s] %s", p.Timestamp, util.Snippet(p.Text, maxChars))
	}
	return strings.TrimSpace(b.String()), nil
}
