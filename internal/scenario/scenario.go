// Package scenario collects performance-test result folders into [Scenario]
// records and orders them by system scale.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/metadata"
	"github.com/calvinalkan/perfagg/internal/stats"
)

// Default file locations relative to a scenario directory.
const (
	DefaultMetadataFile   = "metadata.txt"
	DefaultStatisticsFile = "dashboard/statistics.json"
)

// Naming selects how a scenario is named.
type Naming string

// Naming strategies.
const (
	// NameByDir uses the directory name (experiment/scenario at depth 2).
	NameByDir Naming = "dir"
	// NameByProcess uses the PROCESS_NAME metadata field, falling back to
	// the directory name when the field is absent.
	NameByProcess Naming = "process_name"
)

// Error variables for collection.
var (
	ErrMissingFile  = errors.New("scenario file missing")
	ErrInvalidDepth = errors.New("depth must be 1 or 2")
	ErrInvalidName  = errors.New("invalid naming strategy")
	ErrRootNotDir   = errors.New("results root is not a directory")
)

// Scenario is one performance-test run.
type Scenario struct {
	Name       string
	Dir        string
	Metadata   metadata.Metadata
	Statistics stats.Statistics
}

// Skipped records a candidate directory that lacked a required file.
type Skipped struct {
	Dir string
	Err error
}

// Collection is the result of [Collector.Collect].
type Collection struct {
	Scenarios []Scenario
	Skipped   []Skipped
}

// CollectOptions configures a [Collector].
type CollectOptions struct {
	// Depth is 1 for <root>/<scenario> and 2 for <root>/<experiment>/<scenario>.
	// Default: 1
	Depth int

	// Naming selects the scenario naming strategy.
	// Default: NameByDir
	Naming Naming

	// MetadataFile and StatisticsFile are slash-separated paths relative to
	// a scenario directory.
	MetadataFile   string
	StatisticsFile string
}

// Validate fills defaults and rejects unsupported values.
func (o *CollectOptions) Validate() error {
	if o.Depth == 0 {
		o.Depth = 1
	}

	if o.Depth != 1 && o.Depth != 2 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, o.Depth)
	}

	switch o.Naming {
	case "":
		o.Naming = NameByDir
	case NameByDir, NameByProcess:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidName, o.Naming, NameByDir, NameByProcess)
	}

	if o.MetadataFile == "" {
		o.MetadataFile = DefaultMetadataFile
	}

	if o.StatisticsFile == "" {
		o.StatisticsFile = DefaultStatisticsFile
	}

	return nil
}

// Collector walks a results root and builds scenarios.
type Collector struct {
	fs   fs.FS
	opts CollectOptions
	log  zerolog.Logger
}

// NewCollector returns a collector reading through fsys. Panics if fsys is nil.
func NewCollector(fsys fs.FS, opts CollectOptions, log zerolog.Logger) (*Collector, error) {
	if fsys == nil {
		panic("fs is nil")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Collector{fs: fsys, opts: opts, log: log}, nil
}

// Collect enumerates candidate directories under root at the configured
// depth. Directories lacking either file are skipped; a malformed file
// aborts the whole collection.
func (c *Collector) Collect(ctx context.Context, root string) (Collection, error) {
	info, err := c.fs.Stat(root)
	if err != nil {
		return Collection{}, fmt.Errorf("reading results root: %w", err)
	}

	if !info.IsDir() {
		return Collection{}, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	candidates, err := c.candidates(root)
	if err != nil {
		return Collection{}, err
	}

	var out Collection

	for _, rel := range candidates {
		if err := ctx.Err(); err != nil {
			return Collection{}, err
		}

		dir := filepath.Join(root, rel)

		sc, err := c.load(dir, filepath.ToSlash(rel))
		if errors.Is(err, ErrMissingFile) {
			c.log.Debug().Str("dir", dir).Err(err).Msg("skipping directory")
			out.Skipped = append(out.Skipped, Skipped{Dir: dir, Err: err})

			continue
		}

		if err != nil {
			return Collection{}, err
		}

		c.log.Debug().
			Str("scenario", sc.Name).
			Int("operations", len(sc.Statistics)).
			Msg("scenario loaded")

		out.Scenarios = append(out.Scenarios, sc)
	}

	return out, nil
}

// candidates returns directory paths relative to root at exactly the
// configured depth, in name order.
func (c *Collector) candidates(root string) ([]string, error) {
	level := []string{""}

	for range c.opts.Depth {
		var next []string

		for _, rel := range level {
			entries, err := c.fs.ReadDir(filepath.Join(root, rel))
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", filepath.Join(root, rel), err)
			}

			for _, e := range entries {
				if strings.HasPrefix(e.Name(), ".") {
					continue
				}

				child := filepath.Join(rel, e.Name())

				isDir, err := c.isDirEntry(filepath.Join(root, child), e)
				if err != nil {
					return nil, err
				}

				if isDir {
					next = append(next, child)
				}
			}
		}

		level = next
	}

	return level, nil
}

// isDirEntry reports whether e is a directory, following symlinks. A dangling
// link is not a directory.
func (c *Collector) isDirEntry(path string, e os.DirEntry) (bool, error) {
	if e.Type()&os.ModeSymlink == 0 {
		return e.IsDir(), nil
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Debug().Str("path", path).Msg("skipping dangling symlink")

			return false, nil
		}

		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	return info.IsDir(), nil
}

func (c *Collector) load(dir, rel string) (Scenario, error) {
	mdPath := filepath.Join(dir, filepath.FromSlash(c.opts.MetadataFile))
	stPath := filepath.Join(dir, filepath.FromSlash(c.opts.StatisticsFile))

	for _, p := range []string{mdPath, stPath} {
		ok, err := c.isFile(p)
		if err != nil {
			return Scenario{}, err
		}

		if !ok {
			return Scenario{}, fmt.Errorf("%w: %s", ErrMissingFile, p)
		}
	}

	mdData, err := c.fs.ReadFile(mdPath)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading metadata: %w", err)
	}

	md, err := metadata.ParseBytes(mdData)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", mdPath, err)
	}

	st, err := stats.Load(c.fs, stPath)
	if err != nil {
		return Scenario{}, err
	}

	name := rel
	if c.opts.Naming == NameByProcess {
		if v, ok := md.Lookup(metadata.FieldProcessName); ok && v != "" {
			name = v
		}
	}

	return Scenario{Name: name, Dir: dir, Metadata: md, Statistics: st}, nil
}

func (c *Collector) isFile(path string) (bool, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}

		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	return !info.IsDir(), nil
}
