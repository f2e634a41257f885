package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sambabib/depdrift/pkg/analyzer"
)

// Fixed column layout of the summary table
const (
	labelWidth     = 8
	countWidth     = 5
	percentWidth   = 3
	separatorWidth = 22
	columnSep      = " | "
)

// Render returns the summary table for result.
func Render(result analyzer.Result) (string, error) {
	s, err := Summarize(result)
	if err != nil {
		return "", err
	}
	return RenderSummary(s), nil
}

// RenderSummary formats s as the fixed-width summary table.
func RenderSummary(s Summary) string {
	var b strings.Builder
	separator := strings.Repeat("-", separatorWidth)

	b.WriteString(center("", labelWidth) + columnSep + center("count", countWidth) + columnSep + center("%", percentWidth) + "\n")
	b.WriteString(separator + "\n")
	b.WriteString(row("major", s.Major, s.MajorPercent))
	b.WriteString(row("minor", s.Minor, s.MinorPercent))
	b.WriteString(row("patch", s.Patch, s.PatchPercent))
	b.WriteString(separator + "\n")
	b.WriteString(row("overall", s.Total, s.OverallPercent))

	return b.String()
}

func row(label string, count int, percent float64) string {
	return runewidth.FillLeft(label, labelWidth) + columnSep +
		runewidth.FillLeft(strconv.Itoa(count), countWidth) + columnSep +
		center(formatPercent(percent), percentWidth) + "\n"
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64)
}

// center pads s to width w, putting the odd column of padding on the right.
func center(s string, w int) string {
	n := runewidth.StringWidth(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return runewidth.FillRight(strings.Repeat(" ", left)+s, w)
}

// Notice returns the line reported for a skipped or failed record, or ""
// when the outcome needs no notice.
func Notice(o analyzer.Outcome) string {
	switch o.Status {
	case analyzer.StatusUpToDate:
		return fmt.Sprintf("Package %s is up-to-date. Skipping...", o.Record.Name)
	case analyzer.StatusInvalid:
		field := "current"
		cause := o.Err
		if perr, ok := o.Err.(*analyzer.VersionParseError); ok {
			field = perr.Field
			cause = perr.Err
		}
		return fmt.Sprintf("Error parsing %s version for package %s: %v", field, o.Record.Name, cause)
	default:
		return ""
	}
}

// WriteNotices writes one line per skipped or failed record, in input order.
func WriteNotices(w io.Writer, result analyzer.Result) error {
	for _, o := range result.Outcomes {
		line := Notice(o)
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TextWriter prints notices followed by the summary table.
type TextWriter struct {
	out io.Writer
}

// NewTextWriter creates a TextWriter that outputs to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{out: w}
}

// Write outputs the notices and the table for result.
func (t *TextWriter) Write(result analyzer.Result) error {
	if err := WriteNotices(t.out, result); err != nil {
		return err
	}
	table, err := Render(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(t.out, "\n%s", table)
	return err
}
