// Package eval reads graded answer logs and summarizes the scores, and
// records asked questions in the same line-delimited JSON shape the grader
// consumes.
package eval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Metric names as they appear in a grader's evaluation text.
const (
	MetricRelevance = "relevance"
	MetricAccuracy  = "accuracy"
	MetricClarity   = "clarity"
)

// MaxScore is the top of the grading scale.
const MaxScore = 5

// Row is one graded answer.
type Row struct {
	Timestamp string `json:"timestamp"`
	Query     string `json:"query"`
	Relevance *int   `json:"relevance,omitempty"`
	Accuracy  *int   `json:"accuracy,omitempty"`
	Clarity   *int   `json:"clarity,omitempty"`
	Feedback  string `json:"feedback"`
}

type rawRow struct {
	Timestamp  string `json:"timestamp"`
	Query      string `json:"query"`
	Evaluation string `json:"evaluation"`
}

// Stats reports how reading a log went.
type Stats struct {
	Lines     int `json:"lines"`
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

// ParseScores reads "Relevance: 4/5" style lines from a grader's evaluation
// text. Metrics that are absent stay nil. A metric line whose score is not an
// integer is an error.
func ParseScores(text string) (relevance, accuracy, clarity *int, err error) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		var dest **int
		switch {
		case strings.HasPrefix(lower, MetricRelevance):
			dest = &relevance
		case strings.HasPrefix(lower, MetricAccuracy):
			dest = &accuracy
		case strings.HasPrefix(lower, MetricClarity):
			dest = &clarity
		default:
			continue
		}

		score, perr := parseScore(line)
		if perr != nil {
			return nil, nil, nil, perr
		}
		*dest = &score
	}
	return relevance, accuracy, clarity, nil
}

// parseScore takes the text between the first ':' and the following '/'.
func parseScore(line string) (int, error) {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0, fmt.Errorf("score line %q has no ':'", line)
	}
	num, _, _ := strings.Cut(strings.TrimSpace(rest), "/")
	score, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, fmt.Errorf("score line %q: %w", line, err)
	}
	return score, nil
}

// Read parses a JSONL evaluation log. Lines that are not JSON, or whose
// scores cannot be parsed, are counted as malformed and skipped.
func Read(r io.Reader) ([]Row, Stats, error) {
	var (
		rows  []Row
		stats Stats
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		var raw rawRow
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			stats.Malformed++
			continue
		}
		rel, acc, cla, err := ParseScores(raw.Evaluation)
		if err != nil {
			stats.Malformed++
			continue
		}
		rows = append(rows, Row{
			Timestamp: raw.Timestamp,
			Query:     raw.Query,
			Relevance: rel,
			Accuracy:  acc,
			Clarity:   cla,
			Feedback:  raw.Evaluation,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read evaluation log: %w", err)
	}
	stats.Rows = len(rows)
	return rows, stats, nil
}

// ReadFile is Read over a file.
func ReadFile(path string) ([]Row, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open evaluation log: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Average is the mean of one metric over the rows that carry it.
type Average struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Summary holds per-metric averages.
type Summary struct {
	Rows      int     `json:"rows"`
	Relevance Average `json:"relevance"`
	Accuracy  Average `json:"accuracy"`
	Clarity   Average `json:"clarity"`
}

// Summarize averages each metric over the rows where it is present.
func Summarize(rows []Row) Summary {
	var rel, acc, cla accumulator
	for _, r := range rows {
		rel.add(r.Relevance)
		acc.add(r.Accuracy)
		cla.add(r.Clarity)
	}
	return Summary{
		Rows:      len(rows),
		Relevance: rel.average(),
		Accuracy:  acc.average(),
		Clarity:   cla.average(),
	}
}

type accumulator struct {
	sum, n int
}

func (a *accumulator) add(v *int) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a accumulator) average() Average {
	if a.n == 0 {
		return Average{}
	}
	return Average{Mean: float64(a.sum) / float64(a.n), Count: a.n}
}
