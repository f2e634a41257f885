package source

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=yarn.go -destination=mock_runner.gen.go -package=source Runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/sambabib/depdrift/pkg/analyzer"
	"github.com/sambabib/depdrift/pkg/logger"
)

// ErrNoTable is returned by DecodeYarnReportStrict when the output holds no table line
var ErrNoTable = errors.New("no table found in yarn output")

// Positional fallback when yarn omits the table head
const (
	defaultNameColumn    = 0
	defaultCurrentColumn = 1
	defaultLatestColumn  = 3
)

// Runner executes an external command in dir and returns its stdout
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes the command. A non-zero exit is returned as *exec.ExitError
// together with whatever the command wrote to stdout.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		logger.Debugf("yarn stderr: %s", stderr.String())
	}
	return out, err
}

// YarnSource reads dependency records from `yarn outdated --json`
type YarnSource struct {
	Binary string
	runner Runner
}

// NewYarnSource creates a YarnSource using runner
func NewYarnSource(runner Runner) *YarnSource {
	return &YarnSource{Binary: "yarn", runner: runner}
}

// Records runs yarn in dir and decodes its report
func (y *YarnSource) Records(ctx context.Context, dir string) ([]analyzer.PackageRecord, error) {
	logger.Debugf("Yarn: running `%s outdated --json` in %s", y.Binary, dir)
	out, err := y.runner.Run(ctx, dir, y.Binary, "outdated", "--json")
	if err != nil {
		// yarn exits 1 whenever something is outdated
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || len(bytes.TrimSpace(out)) == 0 {
			return nil, fmt.Errorf("failed to run %s outdated: %w", y.Binary, err)
		}
		logger.Debugf("Yarn: exited with status %d", exitErr.ExitCode())
	}

	records, err := DecodeYarnReport(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("invalid yarn outdated output: %w", err)
	}
	return records, nil
}

// yarnLine is one JSON line of yarn's --json output
type yarnLine struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type yarnTable struct {
	Head []string   `json:"head"`
	Body [][]string `json:"body"`
}

// DecodeYarnReport extracts package records from yarn outdated --json output.
// The table is located by its "table" type, not by line position. Output
// without a table means nothing is outdated and yields no records.
func DecodeYarnReport(r io.Reader) ([]analyzer.PackageRecord, error) {
	records, err := DecodeYarnReportStrict(r)
	if errors.Is(err, ErrNoTable) {
		return []analyzer.PackageRecord{}, nil
	}
	return records, err
}

// DecodeYarnReportStrict is DecodeYarnReport but fails with ErrNoTable when
// the output contains no table.
func DecodeYarnReportStrict(r io.Reader) ([]analyzer.PackageRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var l yarnLine
		if err := json.Unmarshal(line, &l); err != nil {
			// yarn occasionally interleaves plain text; only the table matters
			logger.Debugf("Yarn: skipping non-JSON line %d", lineNo)
			continue
		}
		if l.Type != "table" {
			continue
		}

		var table yarnTable
		if err := json.Unmarshal(l.Data, &table); err != nil {
			return nil, fmt.Errorf("line %d: invalid table data: %w", lineNo, err)
		}
		return tableRecords(table)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading yarn output: %w", err)
	}
	return nil, ErrNoTable
}

func tableRecords(table yarnTable) ([]analyzer.PackageRecord, error) {
	nameCol, currentCol, latestCol := defaultNameColumn, defaultCurrentColumn, defaultLatestColumn
	if len(table.Head) > 0 {
		nameCol = columnIndex(table.Head, "Package", defaultNameColumn)
		currentCol = columnIndex(table.Head, "Current", defaultCurrentColumn)
		latestCol = columnIndex(table.Head, "Latest", defaultLatestColumn)
	}
	width := max(nameCol, currentCol, latestCol) + 1

	records := make([]analyzer.PackageRecord, 0, len(table.Body))
	for i, row := range table.Body {
		if len(row) < width {
			return nil, fmt.Errorf("row %d has %d columns, expected at least %d", i, len(row), width)
		}
		records = append(records, analyzer.PackageRecord{
			Name:           row[nameCol],
			CurrentVersion: row[currentCol],
			LatestVersion:  row[latestCol],
		})
	}
	return records, nil
}

func columnIndex(head []string, name string, fallback int) int {
	for i, h := range head {
		if h == name {
			return i
		}
	}
	return fallback
}
