package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/cuepointapp/cuepoint-server/internal/description"
	"github.com/cuepointapp/cuepoint-server/internal/eval"
	"github.com/cuepointapp/cuepoint-server/internal/service"
)

func runIngest(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	var cf configFlags
	cf.register(fs)
	videoID := fs.String("video", "", "Video ID to ingest from the captions directory")
	file := fs.String("file", "", "Caption or description file to ingest")
	all := fs.Bool("all", false, "Ingest every video in the captions directory")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	set := 0
	for _, on := range []bool{*videoID != "", *file != "", *all} {
		if on {
			set++
		}
	}
	if set != 1 {
		return errors.New("exactly one of -video, -file or -all is required")
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	a, err := openApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ingest := a.ingestService()

	if *all {
		n, err := ingest.IngestAll(ctx, service.TriggerCLI)
		fmt.Fprintf(stdout, "ingested %d videos\n", n)
		return err
	}

	var result *service.IngestResult
	if *file != "" {
		result, err = ingest.IngestFile(ctx, *file, service.TriggerCLI)
	} else {
		result, err = ingest.IngestWithTrigger(ctx, *videoID, service.TriggerCLI)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d passages, %d chapters (%d caption blocks skipped, %d chapter lines skipped) in %s\n",
		result.Video.ID, result.Video.ChunkCount, result.Video.ChapterCount,
		result.Captions.Skipped, result.Extraction.Skipped, result.Duration.Round(time.Millisecond))
	return nil
}

func runReindex(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reindex", flag.ContinueOnError)
	var cf configFlags
	cf.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	a, err := openApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Rebuild(); err != nil {
		return err
	}
	n, ingestErr := a.ingestService().IngestAll(ctx, service.TriggerCLI)

	passages, err := a.index.DocumentCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "rebuilt index: %d videos, %d passages\n", n, passages)
	return ingestErr
}

func runAsk(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	var cf configFlags
	cf.register(fs)
	videoID := fs.String("video", "", "Video ID to ask about")
	query := fs.String("q", "", "The question")
	k := fs.Int("k", 0, "Passages to retrieve (default from config)")
	sessionID := fs.String("session", "", "Session to record the turn in")
	asJSON := fs.Bool("json", false, "Print the full response as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	a, err := openApp(cfg, *sessionID != "")
	if err != nil {
		return err
	}
	defer a.Close()

	ask := service.NewAskService(a.index, a.catalog, a.sessionService(), nil, service.AskOptions{
		K:             cfg.Retrieval.K,
		Threshold:     cfg.Retrieval.RerankThreshold,
		SnippetLength: cfg.Retrieval.SnippetLength,
	}, a.log.Logger)

	resp, err := ask.Ask(ctx, service.AskRequest{
		VideoID:   *videoID,
		Query:     *query,
		K:         *k,
		SessionID: *sessionID,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(stdout, resp.Answer)
	fmt.Fprintln(stdout)
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, src := range resp.Sources {
		fmt.Fprintf(w, "%s\t%s\t%s\n", src.Timestamp, src.ChapterTitle, src.JumpURL)
	}
	return w.Flush()
}

func runChapters(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("chapters", flag.ContinueOnError)
	file := fs.String("file", "", "Description text file")
	asJSON := fs.Bool("json", false, "Print chapters as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	chs, stats := chapters.ExtractWithStats(description.Normalize(string(data)))
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chs)
	}

	if !stats.KeywordFound {
		fmt.Fprintln(stdout, "no Chapters heading found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, ch := range chs {
		fmt.Fprintf(w, "%s\t%d\t%s\n", ch.Timestamp, ch.Seconds, ch.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	analysis := chapters.Analyze(chs)
	fmt.Fprintf(stdout, "\n%d chapters, %d skipped lines, %d generic titles, in order: %t\n",
		analysis.Total, stats.Skipped, analysis.GenericCount, analysis.InOrder)
	return nil
}

func runEval(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	file := fs.String("file", "eval/evaluation_results.jsonl", "JSONL file of graded answers")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	rows, stats, err := eval.ReadFile(*file)
	if err != nil {
		return err
	}

	summary := eval.Summarize(rows)
	fmt.Fprintf(stdout, "%d rows (%d malformed lines skipped)\n", summary.Rows, stats.Malformed)

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "metric\tmean\tscored")
	for _, m := range []struct {
		name string
		avg  eval.Average
	}{
		{"relevance", summary.Relevance},
		{"accuracy", summary.Accuracy},
		{"clarity", summary.Clarity},
	} {
		fmt.Fprintf(w, "%s\t%.2f\t%d\n", m.name, m.avg.Mean, m.avg.Count)
	}
	return w.Flush()
}
