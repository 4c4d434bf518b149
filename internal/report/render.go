package report

import (
	"fmt"
	"path/filepath"

	"github.com/calvinalkan/perfagg/internal/fs"
)

// Format selects the artifact type.
type Format string

// Report formats.
const (
	FormatHTML Format = "html"
	FormatSVG  Format = "svg"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatHTML, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownFormat, s, FormatHTML, FormatSVG)
	}
}

// DefaultOutput returns the output file name used when none is given.
func (f Format) DefaultOutput() string {
	return "output." + string(f)
}

// Renderer serializes charts, in order, into one artifact.
type Renderer interface {
	Render(title string, charts []ChartSpec) ([]byte, error)
}

// NewRenderer returns the renderer for f.
func NewRenderer(f Format) (Renderer, error) {
	switch f {
	case FormatHTML:
		return HTMLRenderer{}, nil
	case FormatSVG:
		return SVGRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

const (
	reportPerms    = 0o644
	reportDirPerms = 0o755
)

// Write renders charts and replaces the file at path with the result. Missing
// parent directories are created. Any previous report at path is discarded.
func Write(fsys fs.FS, path string, r Renderer, title string, charts []ChartSpec) error {
	data, err := r.Render(title, charts)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, reportDirPerms); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	if err := fsys.WriteFileAtomic(path, data, reportPerms); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}

	return nil
}
