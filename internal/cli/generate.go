package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/format"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/layout"
	"github.com/mark3labs/swagger2ts/internal/parser"
	"github.com/mark3labs/swagger2ts/internal/pipeline"
	"github.com/mark3labs/swagger2ts/internal/render"
	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	commonConfig

	Input          string
	Out            string
	IncludeTags    []string
	ExcludeTags    []string
	PackageName    string
	BasePath       string
	Renderers      []string
	Terminals      []string
	Barrels        bool
	Format         bool
	RetryOwnership string
	ClientImport   ir.ClientImportConfig
	ModelImport    ir.ModelImportConfig
	IRSnapshot     string
	Report         string
	DryRun         bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Out:          "src/api",
		Renderers:    []string{"service-axios"},
		Barrels:      true,
		ClientImport: ir.ClientImportConfig{Mode: ir.ClientGlobal},
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript request functions, services and hooks",
		Long: "Generate TypeScript request functions, services and query hooks from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2ts generate --input spec.yaml --out ./src/api
  swagger2ts generate --input https://api.example.com/swagger.json --renderers service-fetch --terminals react-query
  swagger2ts --config swagger2ts.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (default src/api)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.String("package-name", "", "Override the package name derived from the document title")
	flags.String("base-path", "", "Override the URL prefix derived from the first server")
	flags.StringSlice("renderers", nil, "Renderers to run (spec-function, service-axios, service-fetch, service-umi)")
	flags.StringSlice("terminals", nil, "Query hook libraries to target (react-query, vue-query)")
	flags.Bool("barrels", true, "Synthesize index.ts barrel files")
	flags.Bool("format", false, "Run generated files through prettier")
	flags.String("retry-ownership", "", "Note recorded in the IR describing who retries failed requests")
	flags.String("client-mode", "", "How generated code imports the HTTP client (global|local|package)")
	flags.String("client-path", "", "local mode: client module path relative to the output directory")
	flags.String("client-package", "", "package mode: client module specifier")
	flags.String("client-import-name", "", "Local name bound to the imported client")
	flags.String("model-import-type", "", "How generated code imports model types (package|relative)")
	flags.String("model-package-path", "", "package style: model module specifier")
	flags.String("model-relative-path", "", "relative style: model directory relative to the output directory")
	flags.String("ir-snapshot", "", "Write the transformed IR as JSON to this file")
	flags.String("report", "", "Write the execution report as JSON to this file")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()
	flags := cmd.Flags()

	file, path, err := configFromFlags(flags)
	if err != nil {
		return nil, err
	}
	cfg.bind(cmd, path)
	if err := cfg.commonConfig.apply(file, flags); err != nil {
		return nil, err
	}
	if err := applyGenerateConfigFromFile(&cfg, file); err != nil {
		return nil, err
	}
	if err := applyGenerateFlagOverrides(cmd, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, file configValues) error {
	mode := string(cfg.ClientImport.Mode)
	modelType := string(cfg.ModelImport.ImportType)
	for _, err := range []error{
		file.str("input", &cfg.Input),
		file.str("out", &cfg.Out),
		file.list("includetags", &cfg.IncludeTags),
		file.list("excludetags", &cfg.ExcludeTags),
		file.str("packagename", &cfg.PackageName),
		file.str("basepath", &cfg.BasePath),
		file.list("renderers", &cfg.Renderers),
		file.list("terminals", &cfg.Terminals),
		file.boolean("barrels", &cfg.Barrels),
		file.boolean("format", &cfg.Format),
		file.str("retryownership", &cfg.RetryOwnership),
		file.str("clientmode", &mode),
		file.str("clientpath", &cfg.ClientImport.ClientPath),
		file.str("clientpackage", &cfg.ClientImport.ClientPackage),
		file.str("clientimportname", &cfg.ClientImport.ImportName),
		file.str("modelimporttype", &modelType),
		file.str("modelpackagepath", &cfg.ModelImport.PackagePath),
		file.str("modelrelativepath", &cfg.ModelImport.RelativePath),
		file.str("irsnapshot", &cfg.IRSnapshot),
		file.str("report", &cfg.Report),
		file.boolean("dryrun", &cfg.DryRun),
	} {
		if err != nil {
			return err
		}
	}
	cfg.ClientImport.Mode = ir.ClientImportMode(mode)
	cfg.ModelImport.ImportType = ir.ModelImportType(modelType)
	return nil
}

func applyGenerateFlagOverrides(cmd *cobra.Command, cfg *GenerateConfig) error {
	mode := string(cfg.ClientImport.Mode)
	modelType := string(cfg.ModelImport.ImportType)

	o := &flagOverrides{flags: cmd.Flags()}
	o.str("input", &cfg.Input)
	o.str("out", &cfg.Out)
	o.list("include-tags", &cfg.IncludeTags)
	o.list("exclude-tags", &cfg.ExcludeTags)
	o.str("package-name", &cfg.PackageName)
	o.str("base-path", &cfg.BasePath)
	o.list("renderers", &cfg.Renderers)
	o.list("terminals", &cfg.Terminals)
	o.boolean("barrels", &cfg.Barrels)
	o.boolean("format", &cfg.Format)
	o.str("retry-ownership", &cfg.RetryOwnership)
	o.str("client-mode", &mode)
	o.str("client-path", &cfg.ClientImport.ClientPath)
	o.str("client-package", &cfg.ClientImport.ClientPackage)
	o.str("client-import-name", &cfg.ClientImport.ImportName)
	o.str("model-import-type", &modelType)
	o.str("model-package-path", &cfg.ModelImport.PackagePath)
	o.str("model-relative-path", &cfg.ModelImport.RelativePath)
	o.str("ir-snapshot", &cfg.IRSnapshot)
	o.str("report", &cfg.Report)
	o.boolean("dry-run", &cfg.DryRun)

	cfg.ClientImport.Mode = ir.ClientImportMode(mode)
	cfg.ModelImport.ImportType = ir.ModelImportType(modelType)
	return o.err
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Renderers = sanitizeList(c.Renderers)
	c.Terminals = sanitizeList(c.Terminals)
	c.ClientImport.Mode = ir.ClientImportMode(strings.ToLower(strings.TrimSpace(string(c.ClientImport.Mode))))
	if c.ClientImport.Mode == "" {
		c.ClientImport.Mode = ir.ClientGlobal
	}
	c.ModelImport.ImportType = ir.ModelImportType(strings.ToLower(strings.TrimSpace(string(c.ModelImport.ImportType))))
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if c.Out == "" && !c.DryRun {
		return newUsageError("generate: --out must not be empty")
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	if len(c.Renderers) == 0 && len(c.Terminals) == 0 {
		return newUsageError("generate: nothing to render (set --renderers or --terminals)")
	}
	if err := c.ClientImport.Validate(); err != nil {
		return newUsageError("generate: " + err.Error())
	}
	if c.modelImport() != nil {
		if err := c.ModelImport.Validate(); err != nil {
			return newUsageError("generate: " + err.Error())
		}
	}
	return nil
}

func (c *GenerateConfig) modelImport() *ir.ModelImportConfig {
	if c.ModelImport.ImportType == "" {
		return nil
	}
	return &c.ModelImport
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := cfg.logger()
	defer func() { _ = log.Sync() }()

	// 1) Load the document (file or http/https URL), converting Swagger 2.0.
	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(log))
	if err != nil {
		return describe(err, cfg.Input)
	}

	// 2) Assemble the pipeline.
	renderers, err := pipeline.NewRegistry().Build(cfg.Renderers, cfg.Terminals)
	if err != nil {
		return newUsageError("generate: " + err.Error())
	}
	client := cfg.ClientImport
	src := pipeline.DocumentSource{Doc: doc, Options: []parser.Option{
		parser.WithPackageName(cfg.PackageName),
		parser.WithBasePath(cfg.BasePath),
		parser.WithTerminals(cfg.Terminals),
		parser.WithRetryOwnership(cfg.RetryOwnership),
		parser.WithIncludeTags(cfg.IncludeTags),
		parser.WithExcludeTags(cfg.ExcludeTags),
		parser.WithClientImport(&client),
		parser.WithModelImport(cfg.modelImport()),
	}}
	opts := []pipeline.Option{
		pipeline.WithRenderers(renderers...),
		pipeline.WithLogger(log),
	}
	if cfg.Barrels {
		opts = append(opts, pipeline.WithLayout(layout.Barrel{Roots: barrelRoots(renderers)}))
	}
	if cfg.Format {
		opts = append(opts, pipeline.WithFormatter(format.Prettier()))
	}
	if !cfg.DryRun {
		opts = append(opts, pipeline.WithWriter(writer.NewFS(cfg.Out, log)))
	}
	p := pipeline.New(src, opts...)

	// 3) Optional IR snapshot, taken before anything is written.
	if cfg.IRSnapshot != "" {
		snap, err := p.IRSnapshot()
		if err != nil {
			return describe(err, cfg.Input)
		}
		if err := writeArtifact(cfg.IRSnapshot, snap, log); err != nil {
			return describe(err, cfg.Input)
		}
	}

	// 4) Plan, format and write.
	plan, err := p.Plan()
	if err != nil {
		return describe(err, cfg.Input)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(plan.PlannedFiles))
		for _, f := range plan.PlannedFiles {
			paths = append(paths, f.Path)
		}
		printPlan(cfg.out(), absOut, paths)
	} else {
		fmt.Fprintf(cfg.out(), "Wrote %d files to %s (%d unchanged)\n", len(plan.PlannedFiles), absOut, plan.SkippedFiles)
	}
	for _, r := range plan.RendererReports {
		for _, w := range r.Warnings {
			fmt.Fprintf(cfg.out(), "[WARN] %s: %s\n", r.RendererID, w)
		}
	}

	if cfg.Report != "" {
		data, err := ir.MarshalSnapshot(plan)
		if err != nil {
			return err
		}
		if err := writeArtifact(cfg.Report, data, log); err != nil {
			return describe(err, cfg.Input)
		}
	}
	return nil
}

// barrelRoots picks the directories each renderer writes under.
func barrelRoots(renderers []render.Renderer) []string {
	set := map[string]bool{}
	for _, r := range renderers {
		id := r.ID()
		switch {
		case id == "spec-function":
			set["functions"] = true
			set["spec/endpoints"] = true
		case strings.HasPrefix(id, "service-"):
			set["services"] = true
		case strings.HasPrefix(id, "hooks:"):
			set[strings.TrimPrefix(id, "hooks:")] = true
		}
	}
	roots := make([]string, 0, len(set))
	for r := range set {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}

// writeArtifact stores a debug artifact through the FS writer so it shares
// the temp-and-rename behavior of generated files.
func writeArtifact(path string, data []byte, log *zap.SugaredLogger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w := writer.NewFS(filepath.Dir(abs), log)
	_, err = w.Write([]ir.PlannedFile{{Path: filepath.Base(abs), Content: string(data)}})
	return err
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}
