package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2ts/internal/format"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/model"
	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

// ModelsConfig captures the options for the models command.
type ModelsConfig struct {
	commonConfig

	Input          string
	Out            string
	Style          string
	Models         []string
	EnumPatch      string
	ConflictPolicy string
	Format         bool
	DryRun         bool
}

var modelsRunner = runModels

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Generate TypeScript declarations for the document's schemas",
		Long: "Generate one TypeScript file per named schema: interfaces, enums and type aliases. " +
			"An enum patch document can supply member names and comments.",
		Example: strings.TrimSpace(`  swagger2ts models --input spec.yaml --out ./src/models --style module
  swagger2ts models --input spec.yaml --enum-patch enums.json --conflict-policy schema-first`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveModelsConfig(cmd)
			if err != nil {
				return err
			}
			return modelsRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (default src/models)")
	flags.String("style", "", "declaration (ambient .d.ts) or module (default module)")
	flags.StringSlice("models", nil, "Only render these schema names")
	flags.String("enum-patch", "", "Enum patch document to merge into schema enums")
	flags.String("conflict-policy", "", "patch-first or schema-first (default patch-first)")
	flags.Bool("format", false, "Run generated files through prettier")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	return cmd
}

func resolveModelsConfig(cmd *cobra.Command) (*ModelsConfig, error) {
	cfg := ModelsConfig{Out: "src/models", Style: string(model.StyleModule), ConflictPolicy: string(model.PatchFirst)}
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
		file.str("input", &cfg.Input),
		file.str("out", &cfg.Out),
		file.str("style", &cfg.Style),
		file.list("models", &cfg.Models),
		file.str("enumpatch", &cfg.EnumPatch),
		file.str("conflictpolicy", &cfg.ConflictPolicy),
		file.boolean("format", &cfg.Format),
		file.boolean("dryrun", &cfg.DryRun),
	} {
		if err != nil {
			return nil, err
		}
	}

	o := &flagOverrides{flags: flags}
	o.str("input", &cfg.Input)
	o.str("out", &cfg.Out)
	o.str("style", &cfg.Style)
	o.list("models", &cfg.Models)
	o.str("enum-patch", &cfg.EnumPatch)
	o.str("conflict-policy", &cfg.ConflictPolicy)
	o.boolean("format", &cfg.Format)
	o.boolean("dry-run", &cfg.DryRun)
	if o.err != nil {
		return nil, o.err
	}

	if cfg.Input == "" {
		return nil, newUsageError("models: --input is required (set via flag or config file)")
	}
	if _, err := model.ParseStyle(cfg.Style); err != nil {
		return nil, newUsageError("models: " + err.Error())
	}
	if _, err := model.ParseConflictPolicy(cfg.ConflictPolicy); err != nil {
		return nil, newUsageError("models: " + err.Error())
	}
	return &cfg, nil
}

func runModels(ctx context.Context, cfg *ModelsConfig) error {
	log := cfg.logger()
	defer func() { _ = log.Sync() }()

	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(log))
	if err != nil {
		return describe(err, cfg.Input)
	}
	m, err := model.Parse(doc)
	if err != nil {
		return describe(err, cfg.Input)
	}

	style, _ := model.ParseStyle(cfg.Style)
	policy, _ := model.ParseConflictPolicy(cfg.ConflictPolicy)
	opts := model.RenderOptions{Style: style, Names: cfg.Models, Policy: policy}
	if cfg.EnumPatch != "" {
		if opts.Patches, err = model.LoadEnumPatchFile(cfg.EnumPatch); err != nil {
			return describe(err, cfg.Input)
		}
	}
	out, err := model.Render(m, opts)
	if err != nil {
		return describe(err, cfg.Input)
	}
	for _, w := range out.Warnings {
		log.Warnw(w, "renderer", "models")
	}

	var f format.Formatter = format.Noop{}
	if cfg.Format {
		f = format.Prettier()
	}
	files := append([]ir.PlannedFile(nil), out.Files...)
	ir.SortFiles(files)
	for i := range files {
		if files[i].Content, err = f.Format(files[i].Path, files[i].Content); err != nil {
			return describe(err, cfg.Input)
		}
	}

	var w writer.Writer = writer.DryRun{}
	if !cfg.DryRun {
		w = writer.NewFS(cfg.Out, log)
	}
	res, err := w.Write(files)
	if err != nil {
		return describe(err, cfg.Input)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Written))
		for _, f := range res.Written {
			paths = append(paths, f.Path)
		}
		printPlan(cfg.out(), absOut, paths)
		return nil
	}
	fmt.Fprintf(cfg.out(), "Wrote %d model files to %s (%d unchanged)\n", len(res.Written), absOut, res.Skipped)
	return nil
}
