package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sambabib/depdrift/pkg/analyzer"
	"github.com/sambabib/depdrift/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultNpmRegistryURL = "https://registry.npmjs.org"
	defaultConcurrency    = 8
)

// NpmSource builds records from package.json and the npm registry
type NpmSource struct {
	RegistryURL string // Allow overriding the registry URL for testing
	Concurrency int
	Client      *http.Client
}

// NewNpmSource creates a new NpmSource
func NewNpmSource() *NpmSource {
	return &NpmSource{Concurrency: defaultConcurrency, Client: http.DefaultClient}
}

// packageJSON represents the structure of package.json for dependencies
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type registryInfo struct {
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
}

// Records reads package.json in dir and looks up the latest version of every
// dependency. A failed lookup leaves the latest version empty so the package
// shows up as unparseable instead of failing the run.
func (n *NpmSource) Records(ctx context.Context, dir string) ([]analyzer.PackageRecord, error) {
	filePath := filepath.Join(dir, "package.json")
	logger.Debugf("NPM: Reading package.json from %s", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}

	// Merge dependencies and devDependencies
	allDeps := make(map[string]string)
	for name, ver := range pkg.Dependencies {
		allDeps[name] = ver
	}
	for name, ver := range pkg.DevDependencies {
		allDeps[name] = ver
	}

	names := make([]string, 0, len(allDeps))
	for name := range allDeps {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]analyzer.PackageRecord, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(n.Concurrency, 1))

	for i, name := range names {
		records[i] = analyzer.PackageRecord{Name: name, CurrentVersion: trimRange(allDeps[name])}
		g.Go(func() error {
			latest, err := n.latestVersion(ctx, name)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Debugf("NPM: lookup of %s failed: %v", name, err)
				return nil
			}
			records[i].LatestVersion = latest
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("npm registry lookup cancelled: %w", err)
	}
	return records, nil
}

func (n *NpmSource) latestVersion(ctx context.Context, name string) (string, error) {
	registryURLToUse := n.RegistryURL
	if registryURLToUse == "" {
		registryURLToUse = defaultNpmRegistryURL
	}
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(registryURLToUse, "/"), name)
	logger.Debugf("NPM: Fetching from registry: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.npm.install-v1+json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned %s", resp.Status)
	}

	var info registryInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("invalid registry response: %w", err)
	}
	return info.DistTags.Latest, nil
}

// trimRange strips the range operators npm manifests put in front of a version
func trimRange(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimLeft(v, "^~=<>v ")
}
