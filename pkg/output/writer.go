package output

import (
	"fmt"
	"io"

	"github.com/sambabib/depdrift/pkg/analyzer"
)

// Supported output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSarif    = "sarif"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatSarif}

// Writer renders a classification result in one output format.
// Every implementation returns ErrEmptyReport for a result with no packages.
type Writer interface {
	Write(result analyzer.Result) error
}

// Options carries the settings only some formats use.
type Options struct {
	ManifestURI string // SARIF artifact location
	ToolVersion string
	Title       string // Markdown heading
	Levels      SeverityLevels
}

// NewWriter returns the Writer for format.
func NewWriter(format string, w io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(w, opts.Title), nil
	case FormatSarif:
		levels := opts.Levels
		if levels == (SeverityLevels{}) {
			levels = DefaultSeverityLevels()
		}
		return NewSarifWriter(w, opts.ManifestURI, opts.ToolVersion, levels), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (supported: %v)", format, Formats)
	}
}
