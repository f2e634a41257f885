package analyzer

import (
	"github.com/Masterminds/semver/v3"
	"github.com/sambabib/depdrift/pkg/logger"
)

// Classifier sorts package records into outdated buckets.
type Classifier struct {
	// Strict requires every version to be a full MAJOR.MINOR.PATCH string.
	// When false, short forms like "1.2" and a leading "v" are accepted.
	Strict bool
}

// NewClassifier creates a Classifier with lenient version parsing
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify runs the default Classifier over records.
func Classify(records []PackageRecord) Result {
	return NewClassifier().Classify(records)
}

// Classify assigns every record to at most one bucket, keyed on the most
// significant version component that differs. Parse failures are recorded
// as outcomes and never stop the run.
func (c *Classifier) Classify(records []PackageRecord) Result {
	result := Result{
		OutdatedMajor: []string{},
		OutdatedMinor: []string{},
		OutdatedPatch: []string{},
		Total:         len(records),
		Outcomes:      make([]Outcome, 0, len(records)),
	}

	for _, rec := range records {
		outcome := c.classifyRecord(rec)
		logger.Debugf("Classified %s (%s -> %s): %s", rec.Name, rec.CurrentVersion, rec.LatestVersion, outcome.Status)

		switch outcome.Status {
		case StatusMajor:
			result.OutdatedMajor = append(result.OutdatedMajor, rec.Name)
		case StatusMinor:
			result.OutdatedMinor = append(result.OutdatedMinor, rec.Name)
		case StatusPatch:
			result.OutdatedPatch = append(result.OutdatedPatch, rec.Name)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result
}

func (c *Classifier) classifyRecord(rec PackageRecord) Outcome {
	// Textual comparison only; "1.0" and "1.0.0" fall through to parsing.
	if rec.CurrentVersion == rec.LatestVersion {
		return Outcome{Record: rec, Status: StatusUpToDate}
	}

	current, err := c.parse(rec.CurrentVersion)
	if err != nil {
		return Outcome{Record: rec, Status: StatusInvalid, Err: &VersionParseError{
			Package: rec.Name,
			Field:   "current",
			Version: rec.CurrentVersion,
			Err:     err,
		}}
	}

	latest, err := c.parse(rec.LatestVersion)
	if err != nil {
		return Outcome{Record: rec, Status: StatusInvalid, Err: &VersionParseError{
			Package: rec.Name,
			Field:   "latest",
			Version: rec.LatestVersion,
			Err:     err,
		}}
	}

	return Outcome{Record: rec, Status: compare(current, latest)}
}

func (c *Classifier) parse(v string) (*semver.Version, error) {
	if c.Strict {
		return semver.StrictNewVersion(v)
	}
	return semver.NewVersion(v)
}

// compare reports the most significant component in which the two versions
// differ. Direction is ignored: a downgrade is still drift.
func compare(current, latest *semver.Version) Status {
	switch {
	case current.Major() != latest.Major():
		return StatusMajor
	case current.Minor() != latest.Minor():
		return StatusMinor
	case current.Patch() != latest.Patch():
		return StatusPatch
	default:
		// "1.0" vs "1.0.0": textually different but equal once parsed.
		// Left out of every bucket without a notice.
		return StatusEquivalent
	}
}
