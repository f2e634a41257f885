package output

import (
	"encoding/json"
	"io"

	"github.com/sambabib/depdrift/pkg/analyzer"
)

// JSONReport is the machine-readable form of a classification run
type JSONReport struct {
	Summary  Summary       `json:"summary"`
	Outdated JSONBuckets   `json:"outdated"`
	Skipped  []JSONSkipped `json:"skipped"`
}

// JSONBuckets lists package names per bucket, in report order
type JSONBuckets struct {
	Major []string `json:"major"`
	Minor []string `json:"minor"`
	Patch []string `json:"patch"`
}

// JSONSkipped is a record that was not bucketed together with the reason
type JSONSkipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GenerateJSONReport converts a classification result to indented JSON
func GenerateJSONReport(result analyzer.Result) ([]byte, error) {
	s, err := Summarize(result)
	if err != nil {
		return nil, err
	}

	report := JSONReport{
		Summary: s,
		Outdated: JSONBuckets{
			Major: nonNil(result.OutdatedMajor),
			Minor: nonNil(result.OutdatedMinor),
			Patch: nonNil(result.OutdatedPatch),
		},
		Skipped: []JSONSkipped{},
	}
	for _, o := range result.Outcomes {
		if line := Notice(o); line != "" {
			report.Skipped = append(report.Skipped, JSONSkipped{Name: o.Record.Name, Reason: line})
		}
	}

	return json.MarshalIndent(report, "", "  ")
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// JSONWriter outputs the JSON report
type JSONWriter struct {
	out io.Writer
}

// NewJSONWriter creates a JSONWriter that outputs to w
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{out: w}
}

func (j *JSONWriter) Write(result analyzer.Result) error {
	data, err := GenerateJSONReport(result)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = j.out.Write(data)
	return err
}
