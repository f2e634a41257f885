package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sambabib/depdrift/pkg/analyzer"
)

// SARIF format specification: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SarifReport represents the top-level SARIF report structure
type SarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

// SarifRun represents a single run of the analysis tool
type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Results     []SarifResult     `json:"results"`
	Invocations []SarifInvocation `json:"invocations"`
}

// SarifTool represents the tool that performed the analysis
type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

// SarifDriver represents the driver of the tool
type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SarifRule `json:"rules"`
}

// SarifRule represents a rule that was evaluated during the analysis
type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
	FullDescription  SarifMessage `json:"fullDescription"`
	Help             SarifMessage `json:"help"`
}

// SarifResult represents a result of the analysis
type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
}

// SarifMessage represents a message in the SARIF report
type SarifMessage struct {
	Text string `json:"text"`
}

// SarifLocation represents a location in the code
type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

// SarifPhysicalLocation represents a physical location in the code
type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
}

// SarifArtifactLocation represents the location of an artifact
type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifInvocation represents an invocation of the tool
type SarifInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	StartTimeUtc        string `json:"startTimeUtc"`
	EndTimeUtc          string `json:"endTimeUtc"`
}

// SeverityLevels maps each bucket to a configured severity: "error", "warning" or "info"
type SeverityLevels struct {
	Major string
	Minor string
	Patch string
}

// DefaultSeverityLevels mirrors the defaults of the configuration file
func DefaultSeverityLevels() SeverityLevels {
	return SeverityLevels{Major: "error", Minor: "warning", Patch: "info"}
}

func (l SeverityLevels) forStatus(s analyzer.Status) string {
	switch s {
	case analyzer.StatusMajor:
		return l.Major
	case analyzer.StatusMinor:
		return l.Minor
	default:
		return l.Patch
	}
}

// sarifLevel converts a configured severity to a SARIF result level
func sarifLevel(severity string) string {
	switch severity {
	case "error":
		return "error"
	case "warning":
		return "warning"
	case "none", "off":
		return "none"
	default:
		return "note"
	}
}

var sarifRules = []SarifRule{
	{
		ID:               "outdated-major",
		ShortDescription: SarifMessage{Text: "Major version update available"},
		FullDescription:  SarifMessage{Text: "A major version update is available for this dependency, which may include breaking changes."},
		Help:             SarifMessage{Text: "Consider updating with caution and review the changelog for breaking changes."},
	},
	{
		ID:               "outdated-minor",
		ShortDescription: SarifMessage{Text: "Minor version update available"},
		FullDescription:  SarifMessage{Text: "A minor version update is available for this dependency, which may include new features."},
		Help:             SarifMessage{Text: "Consider updating to get new features."},
	},
	{
		ID:               "outdated-patch",
		ShortDescription: SarifMessage{Text: "Patch update available"},
		FullDescription:  SarifMessage{Text: "A patch update is available for this dependency, which may include bug fixes."},
		Help:             SarifMessage{Text: "Consider updating to get bug fixes."},
	},
}

// GenerateSarifReport converts a classification result to SARIF format.
// Only bucketed packages produce results.
func GenerateSarifReport(result analyzer.Result, manifestURI, toolVersion string, levels SeverityLevels, now time.Time) ([]byte, error) {
	if result.Total == 0 {
		return nil, ErrEmptyReport
	}

	results := make([]SarifResult, 0, result.Outdated())
	for _, o := range result.Outcomes {
		if !o.Status.Outdated() {
			continue
		}
		results = append(results, SarifResult{
			RuleID: "outdated-" + o.Status.String(),
			Level:  sarifLevel(levels.forStatus(o.Status)),
			Message: SarifMessage{
				Text: fmt.Sprintf("%s: current version %s, latest version %s",
					o.Record.Name, o.Record.CurrentVersion, o.Record.LatestVersion),
			},
			Locations: []SarifLocation{
				{
					PhysicalLocation: SarifPhysicalLocation{
						ArtifactLocation: SarifArtifactLocation{URI: manifestURI},
					},
				},
			},
		})
	}

	now = now.UTC()
	report := SarifReport{
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Version: "2.1.0",
		Runs: []SarifRun{
			{
				Tool: SarifTool{
					Driver: SarifDriver{
						Name:           "depdrift",
						Version:        toolVersion,
						InformationURI: "https://github.com/sambabib/depdrift",
						Rules:          sarifRules,
					},
				},
				Results: results,
				Invocations: []SarifInvocation{
					{
						ExecutionSuccessful: true,
						StartTimeUtc:        now.Format(time.RFC3339),
						EndTimeUtc:          now.Format(time.RFC3339),
					},
				},
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// SarifWriter outputs the SARIF report
type SarifWriter struct {
	out         io.Writer
	manifestURI string
	toolVersion string
	levels      SeverityLevels
	now         func() time.Time
}

// NewSarifWriter creates a SarifWriter that outputs to w
func NewSarifWriter(w io.Writer, manifestURI, toolVersion string, levels SeverityLevels) *SarifWriter {
	return &SarifWriter{
		out:         w,
		manifestURI: manifestURI,
		toolVersion: toolVersion,
		levels:      levels,
		now:         time.Now,
	}
}

func (s *SarifWriter) Write(result analyzer.Result) error {
	data, err := GenerateSarifReport(result, s.manifestURI, s.toolVersion, s.levels, s.now())
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = s.out.Write(data)
	return err
}
