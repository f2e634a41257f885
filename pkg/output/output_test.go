package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sambabib/depdrift/pkg/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []analyzer.PackageRecord {
	return []analyzer.PackageRecord{
		{Name: "a", CurrentVersion: "1.0.0", LatestVersion: "2.0.0"},
		{Name: "b", CurrentVersion: "1.0.0", LatestVersion: "1.0.0"},
		{Name: "c", CurrentVersion: "1.2.3", LatestVersion: "1.2.4"},
		{Name: "d", CurrentVersion: "x.y.z", LatestVersion: "1.0.0"},
	}
}

func TestRender_Table(t *testing.T) {
	table, err := Render(analyzer.Classify(sampleRecords()))
	require.NoError(t, err)

	expected := "" +
		"         | count |  % \n" +
		"----------------------\n" +
		"   major |     1 | 25 \n" +
		"   minor |     0 |  0 \n" +
		"   patch |     1 | 25 \n" +
		"----------------------\n" +
		" overall |     4 | 50 \n"
	assert.Equal(t, expected, table)
}

func TestRender_RowWidths(t *testing.T) {
	records := make([]analyzer.PackageRecord, 0, 3)
	records = append(records,
		analyzer.PackageRecord{Name: "x", CurrentVersion: "1.0.0", LatestVersion: "1.1.0"},
		analyzer.PackageRecord{Name: "y", CurrentVersion: "1.0.0", LatestVersion: "1.1.0"},
		analyzer.PackageRecord{Name: "z", CurrentVersion: "1.0.0", LatestVersion: "1.0.0"},
	)
	table, err := Render(analyzer.Classify(records))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	require.Len(t, lines, 7)
	for _, line := range lines {
		assert.Len(t, line, 22, "every line is 22 columns wide: %q", line)
	}
	assert.Equal(t, "   minor |     2 | 67 ", lines[3])
	assert.Equal(t, " overall |     3 | 67 ", lines[6])

	// 1/8 is 12.5, which rounds half to even
	records = records[:0]
	records = append(records, analyzer.PackageRecord{Name: "m", CurrentVersion: "1.0.0", LatestVersion: "2.0.0"})
	for _, name := range []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7"} {
		records = append(records, analyzer.PackageRecord{Name: name, CurrentVersion: "1.0.0", LatestVersion: "1.0.0"})
	}
	table, err = Render(analyzer.Classify(records))
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "   major |     1 | 12 ", lines[2])
	assert.Equal(t, " overall |     8 | 12 ", lines[6])
}

func TestRender_FullPercentage(t *testing.T) {
	table, err := Render(analyzer.Classify([]analyzer.PackageRecord{
		{Name: "only", CurrentVersion: "1.0.0", LatestVersion: "9.0.0"},
	}))
	require.NoError(t, err)
	assert.Contains(t, table, "   major |     1 | 100\n")
	assert.Contains(t, table, " overall |     1 | 100\n")
}

func TestRender_EmptyReport(t *testing.T) {
	table, err := Render(analyzer.Classify(nil))
	assert.ErrorIs(t, err, ErrEmptyReport)
	assert.Empty(t, table)
}

func TestRender_Idempotent(t *testing.T) {
	records := sampleRecords()
	first, err := Render(analyzer.Classify(records))
	require.NoError(t, err)
	second, err := Render(analyzer.Classify(records))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(analyzer.Classify(sampleRecords()))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Major)
	assert.Equal(t, 0, s.Minor)
	assert.Equal(t, 1, s.Patch)
	assert.Equal(t, 2, s.Outdated)
	assert.Equal(t, 4, s.Total)
	assert.InDelta(t, 25.0, s.MajorPercent, 1e-9)
	assert.InDelta(t, 50.0, s.OverallPercent, 1e-9)
	assert.InDelta(t, s.MajorPercent+s.MinorPercent+s.PatchPercent, s.OverallPercent, 1e-9)
}

func TestWriteNotices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotices(&buf, analyzer.Classify(sampleRecords())))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Package b is up-to-date. Skipping...", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Error parsing current version for package d: "), lines[1])
}

func TestNotice_LatestVersionAndEquivalent(t *testing.T) {
	result := analyzer.Classify([]analyzer.PackageRecord{
		{Name: "e", CurrentVersion: "1.0.0", LatestVersion: "exotic"},
		{Name: "f", CurrentVersion: "1.0", LatestVersion: "1.0.0"},
	})
	require.Len(t, result.Outcomes, 2)

	assert.True(t, strings.HasPrefix(Notice(result.Outcomes[0]), "Error parsing latest version for package e: "))
	assert.Empty(t, Notice(result.Outcomes[1]), "semantically equal versions produce no notice")
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf).Write(analyzer.Classify(sampleRecords())))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Package b is up-to-date. Skipping...\n"))
	assert.Contains(t, out, "\n\n         | count |  % \n")
	assert.True(t, strings.HasSuffix(out, " overall |     4 | 50 \n"))
}

func TestTextWriter_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextWriter(&buf).Write(analyzer.Classify(nil))
	assert.True(t, errors.Is(err, ErrEmptyReport))
}

func TestGenerateJSONReport(t *testing.T) {
	data, err := GenerateJSONReport(analyzer.Classify(sampleRecords()))
	require.NoError(t, err)

	var report JSONReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 4, report.Summary.Total)
	assert.Equal(t, []string{"a"}, report.Outdated.Major)
	assert.Equal(t, []string{}, report.Outdated.Minor)
	assert.Equal(t, []string{"c"}, report.Outdated.Patch)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "b", report.Skipped[0].Name)
	assert.Equal(t, "d", report.Skipped[1].Name)
	assert.Contains(t, string(data), `"minor": []`)
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownWriter(&buf, "").Write(analyzer.Classify(sampleRecords())))

	out := buf.String()
	assert.Contains(t, out, "# Dependency Drift Report")
	assert.Contains(t, out, "Bucket")
	assert.Contains(t, out, "```mermaid")
	assert.Contains(t, out, "## Major updates")
	assert.Contains(t, out, "## Patch updates")
	assert.NotContains(t, out, "## Minor updates")
	assert.Contains(t, out, "## Unparseable versions")
}

func TestGenerateSarifReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := GenerateSarifReport(analyzer.Classify(sampleRecords()), "package.json", "1.2.3", DefaultSeverityLevels(), now)
	require.NoError(t, err)

	var report SarifReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Runs, 1)
	run := report.Runs[0]
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	assert.Len(t, run.Tool.Driver.Rules, 3)
	require.Len(t, run.Results, 2)

	assert.Equal(t, "outdated-major", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "a: current version 1.0.0, latest version 2.0.0", run.Results[0].Message.Text)
	assert.Equal(t, "outdated-patch", run.Results[1].RuleID)
	assert.Equal(t, "note", run.Results[1].Level)
	assert.Equal(t, "package.json", run.Results[1].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, "2024-05-01T12:00:00Z", run.Invocations[0].EndTimeUtc)
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range Formats {
		w, err := NewWriter(format, &buf, Options{})
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}

	_, err := NewWriter("xml", &buf, Options{})
	assert.Error(t, err)
}
