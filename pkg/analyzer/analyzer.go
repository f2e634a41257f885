package analyzer

import "fmt"

// PackageRecord is one dependency as reported by the package manager
type PackageRecord struct {
	Name           string `json:"name"`            // package name
	CurrentVersion string `json:"current_version"` // version installed in the project
	LatestVersion  string `json:"latest_version"`  // latest version available in the registry
}

// Status describes how a single record was classified
type Status int

const (
	StatusUpToDate   Status = iota // current and latest are textually identical
	StatusMajor                    // major components differ
	StatusMinor                    // minor components differ
	StatusPatch                    // patch components differ
	StatusEquivalent               // textually different but semantically equal (e.g. "1.0" and "1.0.0")
	StatusInvalid                  // one of the versions could not be parsed
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusMajor:
		return "major"
	case StatusMinor:
		return "minor"
	case StatusPatch:
		return "patch"
	case StatusEquivalent:
		return "equivalent"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outdated reports whether the status places a package in one of the buckets.
func (s Status) Outdated() bool {
	return s == StatusMajor || s == StatusMinor || s == StatusPatch
}

// Outcome is the classification of a single record. Err is set only when
// Status is StatusInvalid and is always a *VersionParseError.
type Outcome struct {
	Record PackageRecord
	Status Status
	Err    error
}

// Result holds the outdated buckets for a classification run.
//
// Total is the number of records handed to the classifier, including
// up-to-date and unparseable ones, so it is not the sum of the buckets.
type Result struct {
	OutdatedMajor []string
	OutdatedMinor []string
	OutdatedPatch []string
	Total         int

	// Outcomes has one entry per input record, in input order.
	Outcomes []Outcome
}

// Outdated returns the number of packages placed in any bucket.
func (r Result) Outdated() int {
	return len(r.OutdatedMajor) + len(r.OutdatedMinor) + len(r.OutdatedPatch)
}

// Bucket returns the package names recorded for the given status.
func (r Result) Bucket(s Status) []string {
	switch s {
	case StatusMajor:
		return r.OutdatedMajor
	case StatusMinor:
		return r.OutdatedMinor
	case StatusPatch:
		return r.OutdatedPatch
	default:
		return nil
	}
}

// VersionParseError is reported for a record whose current or latest
// version is not a valid semantic version.
type VersionParseError struct {
	Package string
	Field   string // "current" or "latest"
	Version string
	Err     error
}

func (e *VersionParseError) Error() string {
	return fmt.Sprintf("invalid %s version %q for package %s: %v", e.Field, e.Version, e.Package, e.Err)
}

func (e *VersionParseError) Unwrap() error {
	return e.Err
}
