package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nerdneilsfield/go-md-translator/internal/pipeline"
	"github.com/nerdneilsfield/go-md-translator/internal/terms"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
)

// printSummary 输出翻译结果摘要
func printSummary(w io.Writer, report *pipeline.Report, source, target language.Info) {
	title := color.New(color.FgGreen, color.Bold)
	title.Fprintf(w, "Translated %s -> %s\n", source, target)

	fmt.Fprintf(w, "  Output:   %s\n", report.OutputPath)
	fmt.Fprintf(w, "  Attempts: %d\n", report.Attempts)
	fmt.Fprintf(w, "  Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Run ID:   %s\n", report.RunID)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Field", "Status", "Term Sources"})
	for _, f := range report.Fields {
		status := string(f.Status)
		if f.Status == pipeline.StatusFailed {
			status = color.RedString(status)
		}
		tw.AppendRow(table.Row{f.Field, status, formatSources(f.Sources)})
	}
	tw.Render()
}

// formatSources 如 "dictionary:1 machine:2"
func formatSources(sources map[terms.Source]int) string {
	if len(sources) == 0 {
		return "-"
	}
	keys := make([]terms.Source, 0, len(sources))
	for s := range sources {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	parts := make([]string, 0, len(keys))
	for _, s := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", s, sources[s]))
	}
	return strings.Join(parts, " ")
}
