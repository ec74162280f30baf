package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// RenderSummary prints one row per file and a totals line. Colours and
// rounded borders are used only on terminals.
func RenderSummary(w io.Writer, report *BatchReport) error {
	color := IsTerminal(w)

	tw := table.NewWriter()
	if color {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"File", "Status", "Segments", "Outputs", "Time"})

	for _, res := range report.Results {
		if res == nil {
			continue
		}
		status := string(res.Status)
		if color {
			status = statusColor(res.Status).Sprint(status)
		}
		outputs := outputNames(res.Outputs)
		if res.Err != nil {
			outputs = strings.TrimSpace(outputs + " " + errSummary(res.Err))
		}
		tw.AppendRow(table.Row{
			filepath.Base(res.Source),
			status,
			res.Segments,
			outputs,
			res.Elapsed.Round(100 * time.Millisecond).String(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 60},
		{Number: 5, Align: text.AlignRight},
	})

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Completed: %d of %d files processed successfully (%d partial)\nTotal processing time: %.1f seconds\n",
		report.Count(StatusSuccess), len(report.Results), report.Count(StatusPartial), report.Elapsed.Seconds())
	if err != nil {
		return err
	}
	if report.OutDir != "" {
		abs, _ := filepath.Abs(report.OutDir)
		_, err = fmt.Fprintf(w, "Output directory: %s\n", abs)
	}
	return err
}

func statusColor(s Status) text.Colors {
	switch s {
	case StatusSuccess:
		return text.Colors{text.FgGreen}
	case StatusPartial:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

// FormatOrder returns the keys of a result's outputs, sorted.
func FormatOrder(outputs map[string]string) []string {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func outputNames(outputs map[string]string) string {
	keys := FormatOrder(outputs)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = filepath.Base(outputs[k])
	}
	return strings.Join(names, ", ")
}

func errSummary(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 80 {
		msg = msg[:77] + "..."
	}
	return "(" + msg + ")"
}
