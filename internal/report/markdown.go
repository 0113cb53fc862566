package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nbscan/nbscan/internal/model"
)

// MarkdownWriter outputs scan summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the scan summary in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeRemovedFiles(md, report)
	w.writeURLs(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Notebook Scan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Directory", "`" + report.Directory + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Elapsed.String()},
			{"URL List", "`" + report.OutputFile + "`"},
		},
	})
	md.PlainText("")
}

// writeSummary writes the scan statistics table.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Files scanned", strconv.Itoa(report.FilesScanned)},
			{"Code cells", strconv.Itoa(report.CellsScanned)},
			{"Distinct URLs", strconv.Itoa(report.URLCount())},
			{"Corrupt files", strconv.Itoa(len(report.RemovedFiles))},
		},
	})
	md.PlainText("")
}

// writeRemovedFiles lists corrupt files handled during the run.
func (w *MarkdownWriter) writeRemovedFiles(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.RemovedFiles) == 0 {
		return
	}

	md.H2("Corrupt Files")
	md.PlainText("")

	rows := make([][]string, len(report.RemovedFiles))
	for i, rf := range report.RemovedFiles {
		state := "removed"
		if rf.Kept {
			state = "kept"
		}
		rows[i] = []string{"`" + rf.Path + "`", string(rf.Reason), state}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Path", "Reason", "State"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeURLs lists the extracted URLs in output order.
func (w *MarkdownWriter) writeURLs(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Extracted URLs")
	md.PlainText("")

	urls := report.SortedURLs()
	if len(urls) == 0 {
		md.PlainText("No URLs extracted.")
		md.PlainText("")
		return
	}

	items := make([]string, len(urls))
	for i, url := range urls {
		items[i] = "`" + url + "`"
	}
	md.BulletList(items...)
	md.PlainText("")
}
