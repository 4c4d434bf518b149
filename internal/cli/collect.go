package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/scenario"
)

// Error variables for argument validation.
var (
	ErrRootRequired      = errors.New("results root directory is required")
	ErrOperationRequired = errors.New("operation is required (-o, --operation)")
	ErrScenarioRequired  = errors.New("scenario name is required")
	ErrScenarioNotFound  = errors.New("scenario not found")
	ErrTooManyArgs       = errors.New("too many arguments")
	ErrNoScenarios       = errors.New("no scenarios found")
	ErrNoCharts          = errors.New("no charts could be built")
)

// collectFlags registers the collection flags shared by every command that
// walks a results root. Defaults come from the loaded config.
type collectFlags struct {
	depth          int
	naming         string
	metadataFile   string
	statisticsFile string
}

func addCollectFlags(fset *flag.FlagSet, cfg *config.Config) *collectFlags {
	f := &collectFlags{}

	fset.IntVar(&f.depth, "depth", cfg.Depth, "Scenario depth below root (1 or 2)")
	fset.StringVar(&f.naming, "naming", cfg.Naming, "Scenario naming: dir or process_name")
	fset.StringVar(&f.metadataFile, "metadata-file", cfg.MetadataFile, "Metadata `path` relative to a scenario")
	fset.StringVar(&f.statisticsFile, "statistics-file", cfg.StatisticsFile, "Statistics `path` relative to a scenario")

	return f
}

func (f *collectFlags) options() scenario.CollectOptions {
	return scenario.CollectOptions{
		Depth:          f.depth,
		Naming:         scenario.Naming(f.naming),
		MetadataFile:   f.metadataFile,
		StatisticsFile: f.statisticsFile,
	}
}

// collectSorted collects the scenarios under root and returns them in sort
// order.
func collectSorted(ctx context.Context, fsys fs.FS, log zerolog.Logger, opts scenario.CollectOptions, root string) ([]scenario.Scenario, error) {
	collector, err := scenario.NewCollector(fsys, opts, log)
	if err != nil {
		return nil, err
	}

	coll, err := collector.Collect(ctx, root)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("root", root).
		Int("scenarios", len(coll.Scenarios)).
		Int("skipped", len(coll.Skipped)).
		Msg("collected")

	return scenario.Sort(coll.Scenarios)
}

// resolve makes path absolute against the effective working directory.
func resolve(cfg *config.Config, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cfg.EffectiveCwd, path)
}
