package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2ts/internal/layout"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

// BarrelsConfig captures the options for the barrels command.
type BarrelsConfig struct {
	commonConfig

	Dir    string
	Roots  []string
	DryRun bool
}

var barrelsRunner = runBarrels

func newBarrelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "barrels",
		Short: "Write index.ts barrel files for an existing TypeScript tree",
		Long: "Scan an existing directory and write one index.ts per directory that re-exports its modules " +
			"and subdirectories, up to the nearest root.",
		Example: strings.TrimSpace(`  swagger2ts barrels --dir ./src/api --roots functions,services
  swagger2ts barrels --dir ./src --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveBarrelsConfig(cmd)
			if err != nil {
				return err
			}
			return barrelsRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("dir", "", "Directory to scan")
	flags.StringSlice("roots", nil, "Root directories relative to --dir (default: the whole tree)")
	flags.Bool("dry-run", false, "Preview planned barrels without writing files")
	return cmd
}

func resolveBarrelsConfig(cmd *cobra.Command) (*BarrelsConfig, error) {
	cfg := BarrelsConfig{}
	flags := cmd.Flags()

	file, path, err := configFromFlags(flags)
	if err != nil {
		return nil, err
	}
	cfg.bind(cmd, path)
	if err := cfg.commonConfig.apply(file, flags); err != nil {
		return nil, err
	}
	for _, err := range []error{
		file.str("dir", &cfg.Dir),
		file.list("roots", &cfg.Roots),
		file.boolean("dryrun", &cfg.DryRun),
	} {
		if err != nil {
			return nil, err
		}
	}
	o := &flagOverrides{flags: flags}
	o.str("dir", &cfg.Dir)
	o.list("roots", &cfg.Roots)
	o.boolean("dry-run", &cfg.DryRun)
	if o.err != nil {
		return nil, o.err
	}

	if cfg.Dir == "" {
		return nil, newUsageError("barrels: --dir is required")
	}
	st, err := os.Stat(cfg.Dir)
	if err != nil || !st.IsDir() {
		return nil, newUsageError(fmt.Sprintf("barrels: %q is not a directory", cfg.Dir))
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}
	return &cfg, nil
}

func runBarrels(ctx context.Context, cfg *BarrelsConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := cfg.logger()
	defer func() { _ = log.Sync() }()

	files, err := layout.ScanDirectory(cfg.Dir, cfg.Roots)
	if err != nil {
		return describe(err, cfg.Dir)
	}

	var w writer.Writer = writer.DryRun{}
	if !cfg.DryRun {
		w = writer.NewFS(cfg.Dir, log)
	}
	res, err := w.Write(files)
	if err != nil {
		return describe(err, cfg.Dir)
	}

	absDir := cfg.Dir
	if ap, err := filepath.Abs(cfg.Dir); err == nil {
		absDir = ap
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Written))
		for _, f := range res.Written {
			paths = append(paths, f.Path)
		}
		printPlan(cfg.out(), absDir, paths)
		return nil
	}
	fmt.Fprintf(cfg.out(), "Wrote %d barrels under %s (%d unchanged)\n", len(res.Written), absDir, res.Skipped)
	return nil
}
