package output

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/sambabib/depdrift/pkg/analyzer"
)

// MarkdownWriter outputs the report as a Markdown document with a summary
// table, a pie chart of the buckets and the package names per bucket.
type MarkdownWriter struct {
	out   io.Writer
	title string
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to w.
func NewMarkdownWriter(w io.Writer, title string) *MarkdownWriter {
	if title == "" {
		title = "Dependency Drift Report"
	}
	return &MarkdownWriter{out: w, title: title}
}

// Write outputs result in Markdown format.
func (m *MarkdownWriter) Write(result analyzer.Result) error {
	s, err := Summarize(result)
	if err != nil {
		return err
	}

	md := markdown.NewMarkdown(m.out)
	md.H1(m.title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Bucket", "Count", "%"},
		Rows: [][]string{
			{"major", strconv.Itoa(s.Major), formatPercent(s.MajorPercent)},
			{"minor", strconv.Itoa(s.Minor), formatPercent(s.MinorPercent)},
			{"patch", strconv.Itoa(s.Patch), formatPercent(s.PatchPercent)},
			{"**overall**", "**" + strconv.Itoa(s.Total) + "**", "**" + formatPercent(s.OverallPercent) + "**"},
		},
	})
	md.PlainText("")

	if s.Outdated > 0 {
		m.writePieChart(md, s)
		m.writeBucket(md, "Major updates", result.OutdatedMajor)
		m.writeBucket(md, "Minor updates", result.OutdatedMinor)
		m.writeBucket(md, "Patch updates", result.OutdatedPatch)
	} else {
		md.Tip("All reported dependencies are up to date.")
		md.PlainText("")
	}

	m.writeSkipped(md, result)

	return md.Build()
}

func (m *MarkdownWriter) writePieChart(md *markdown.Markdown, s Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outdated dependencies by drift"),
		piechart.WithShowData(true),
	)
	if s.Major > 0 {
		chart.LabelAndIntValue("Major", uint64(s.Major))
	}
	if s.Minor > 0 {
		chart.LabelAndIntValue("Minor", uint64(s.Minor))
	}
	if s.Patch > 0 {
		chart.LabelAndIntValue("Patch", uint64(s.Patch))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (m *MarkdownWriter) writeBucket(md *markdown.Markdown, heading string, names []string) {
	if len(names) == 0 {
		return
	}
	md.H2(heading)
	md.PlainText("")
	md.BulletList(names...)
	md.PlainText("")
}

func (m *MarkdownWriter) writeSkipped(md *markdown.Markdown, result analyzer.Result) {
	var lines []string
	for _, o := range result.Outcomes {
		if o.Status == analyzer.StatusInvalid {
			lines = append(lines, Notice(o))
		}
	}
	if len(lines) == 0 {
		return
	}
	md.H2("Unparseable versions")
	md.PlainText("")
	md.BulletList(lines...)
	md.PlainText("")
}
