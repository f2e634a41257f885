package source

import (
	"context"
	"fmt"

	"github.com/sambabib/depdrift/pkg/analyzer"
)

// Source names accepted by New
const (
	NameYarn = "yarn"
	NameNpm  = "npm"
)

// Source produces the dependency records of a project
type Source interface {
	// Records returns one record per dependency of the project in dir
	Records(ctx context.Context, dir string) ([]analyzer.PackageRecord, error)
}

// Settings configures the sources built by New
type Settings struct {
	YarnPath    string // yarn executable, defaults to "yarn"
	RegistryURL string // npm registry base URL
	Concurrency int    // parallel registry requests
}

// New returns the Source registered under name
func New(name string, s Settings) (Source, error) {
	switch name {
	case NameYarn, "":
		y := NewYarnSource(ExecRunner{})
		if s.YarnPath != "" {
			y.Binary = s.YarnPath
		}
		return y, nil
	case NameNpm:
		n := NewNpmSource()
		n.RegistryURL = s.RegistryURL
		if s.Concurrency > 0 {
			n.Concurrency = s.Concurrency
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported source %q (supported: %s, %s)", name, NameYarn, NameNpm)
	}
}
