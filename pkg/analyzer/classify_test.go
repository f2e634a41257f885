package analyzer

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, current, latest string) PackageRecord {
	return PackageRecord{Name: name, CurrentVersion: current, LatestVersion: latest}
}

func TestClassify_MixedReport(t *testing.T) {
	records := []PackageRecord{
		rec("a", "1.0.0", "2.0.0"),
		rec("b", "1.0.0", "1.0.0"),
		rec("c", "1.2.3", "1.2.4"),
		rec("d", "x.y.z", "1.0.0"),
	}

	result := Classify(records)

	assert.Equal(t, []string{"a"}, result.OutdatedMajor)
	assert.Empty(t, result.OutdatedMinor)
	assert.Equal(t, []string{"c"}, result.OutdatedPatch)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Outdated())

	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, StatusMajor, result.Outcomes[0].Status)
	assert.Equal(t, StatusUpToDate, result.Outcomes[1].Status)
	assert.Equal(t, StatusPatch, result.Outcomes[2].Status)
	assert.Equal(t, StatusInvalid, result.Outcomes[3].Status)

	var parseErr *VersionParseError
	require.True(t, errors.As(result.Outcomes[3].Err, &parseErr))
	assert.Equal(t, "d", parseErr.Package)
	assert.Equal(t, "current", parseErr.Field)
	assert.Equal(t, "x.y.z", parseErr.Version)
}

func TestClassify_MostSignificantComponentWins(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    Status
	}{
		{"major beats minor and patch", "1.0.0", "2.1.1", StatusMajor},
		{"minor beats patch", "1.2.0", "1.3.1", StatusMinor},
		{"patch only", "1.2.3", "1.2.4", StatusPatch},
		{"downgrade still counts", "3.0.0", "2.9.9", StatusMajor},
		{"prerelease ignored by comparison", "1.2.3-beta.1", "1.2.3", StatusEquivalent},
		{"v prefix accepted", "v1.2.3", "1.3.0", StatusMinor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify([]PackageRecord{rec("pkg", tt.current, tt.latest)})
			require.Len(t, result.Outcomes, 1)
			assert.Equal(t, tt.want, result.Outcomes[0].Status)

			buckets := 0
			for _, s := range []Status{StatusMajor, StatusMinor, StatusPatch} {
				if len(result.Bucket(s)) > 0 {
					buckets++
					assert.Equal(t, tt.want, s)
				}
			}
			assert.LessOrEqual(t, buckets, 1, "a package must land in at most one bucket")
		})
	}
}

func TestClassify_TextualEqualitySkipsParsing(t *testing.T) {
	// Unparseable but identical strings are up-to-date, not invalid.
	result := Classify([]PackageRecord{rec("git-dep", "github:foo/bar", "github:foo/bar")})

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusUpToDate, result.Outcomes[0].Status)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.Zero(t, result.Outdated())
}

func TestClassify_SemanticallyEqualIsSilentlyUnclassified(t *testing.T) {
	result := Classify([]PackageRecord{rec("short", "1.0", "1.0.0")})

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusEquivalent, result.Outcomes[0].Status)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.Zero(t, result.Outdated())
	assert.Equal(t, 1, result.Total)
}

func TestClassify_LatestParseFailure(t *testing.T) {
	result := Classify([]PackageRecord{
		rec("broken", "1.0.0", "exotic"),
		rec("after", "1.0.0", "1.1.0"),
	})

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusInvalid, result.Outcomes[0].Status)

	var parseErr *VersionParseError
	require.True(t, errors.As(result.Outcomes[0].Err, &parseErr))
	assert.Equal(t, "latest", parseErr.Field)
	assert.Contains(t, parseErr.Error(), "broken")

	// processing continues after a failure
	assert.Equal(t, []string{"after"}, result.OutdatedMinor)
	assert.Equal(t, 2, result.Total)
}

func TestClassify_StrictParsing(t *testing.T) {
	c := &Classifier{Strict: true}
	result := c.Classify([]PackageRecord{
		rec("short", "1.0", "1.0.0"),
		rec("full", "1.0.0", "1.0.1"),
	})

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusInvalid, result.Outcomes[0].Status)
	assert.ErrorIs(t, result.Outcomes[0].Err, semver.ErrInvalidSemVer)
	assert.Equal(t, []string{"full"}, result.OutdatedPatch)
}

func TestClassify_PartialAndPrefixedVersions(t *testing.T) {
	records := []PackageRecord{
		rec("one", "1", "1.0.0"),
		rec("v", "v1.0.0", "1.0.0"),
	}

	lenient := Classify(records)
	require.Len(t, lenient.Outcomes, 2)
	for _, o := range lenient.Outcomes {
		assert.Equal(t, StatusEquivalent, o.Status, o.Record.Name)
		assert.NoError(t, o.Err)
	}
	assert.Zero(t, lenient.Outdated())

	strict := (&Classifier{Strict: true}).Classify(records)
	require.Len(t, strict.Outcomes, 2)
	for _, o := range strict.Outcomes {
		assert.Equal(t, StatusInvalid, o.Status, o.Record.Name)
		var parseErr *VersionParseError
		require.ErrorAs(t, o.Err, &parseErr)
		assert.Equal(t, "current", parseErr.Field)
	}
}

func TestClassify_PreservesInputOrder(t *testing.T) {
	result := Classify([]PackageRecord{
		rec("zeta", "1.0.0", "2.0.0"),
		rec("alpha", "1.0.0", "3.0.0"),
		rec("mid", "1.0.0", "1.5.0"),
		rec("beta", "2.0.0", "4.0.0"),
	})

	assert.Equal(t, []string{"zeta", "alpha", "beta"}, result.OutdatedMajor)
	assert.Equal(t, []string{"mid"}, result.OutdatedMinor)
}

func TestClassify_Empty(t *testing.T) {
	result := Classify(nil)

	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Outcomes)
	assert.Zero(t, result.Outdated())
}

func TestClassify_TotalIndependentOfOutcomes(t *testing.T) {
	records := []PackageRecord{
		rec("a", "1.0.0", "1.0.0"),
		rec("b", "bad", "1.0.0"),
		rec("c", "1.0", "1.0.0"),
	}
	result := Classify(records)

	assert.Equal(t, len(records), result.Total)
	assert.Zero(t, result.Outdated())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "major", StatusMajor.String())
	assert.Equal(t, "up-to-date", StatusUpToDate.String())
	assert.Equal(t, "Status(42)", Status(42).String())
	assert.True(t, StatusPatch.Outdated())
	assert.False(t, StatusEquivalent.Outdated())
}
