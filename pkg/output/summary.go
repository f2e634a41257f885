package output

import (
	"errors"

	"github.com/sambabib/depdrift/pkg/analyzer"
)

// ErrEmptyReport is returned when a result has no packages, since no
// percentage can be computed for it.
var ErrEmptyReport = errors.New("empty dependency report")

// Summary holds the per-bucket counts and percentages of a classification run.
// Percentages are unrounded; rounding happens only when rendering.
type Summary struct {
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Patch    int `json:"patch"`
	Outdated int `json:"outdated"`
	Total    int `json:"total"`

	MajorPercent   float64 `json:"major_percent"`
	MinorPercent   float64 `json:"minor_percent"`
	PatchPercent   float64 `json:"patch_percent"`
	OverallPercent float64 `json:"overall_percent"`
}

// Summarize computes bucket counts and percentages for result.
func Summarize(result analyzer.Result) (Summary, error) {
	if result.Total == 0 {
		return Summary{}, ErrEmptyReport
	}

	s := Summary{
		Major: len(result.OutdatedMajor),
		Minor: len(result.OutdatedMinor),
		Patch: len(result.OutdatedPatch),
		Total: result.Total,
	}
	s.Outdated = s.Major + s.Minor + s.Patch

	total := float64(s.Total)
	s.MajorPercent = float64(s.Major) / total * 100
	s.MinorPercent = float64(s.Minor) / total * 100
	s.PatchPercent = float64(s.Patch) / total * 100
	s.OverallPercent = float64(s.Outdated) / total * 100

	return s, nil
}
