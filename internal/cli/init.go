package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

const defaultConfigName = "swagger2ts.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	commonConfig

	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2ts configuration file",
		Long:  "Scaffold a commented swagger2ts configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{OutputPath: out, Force: force}
			cfg.bind(cmd, "")
			if err := cfg.commonConfig.apply(nil, cmd.Flags()); err != nil {
				return err
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")
	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := cfg.logger()
	defer func() { _ = log.Sync() }()

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return newUsageError(fmt.Sprintf("init: resolve output path: %v", err))
	}
	if st, err := os.Stat(absPath); err == nil && st.Mode().IsRegular() && !cfg.Force {
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	fs := writer.NewFS(filepath.Dir(absPath), log)
	if _, err := fs.Write([]ir.PlannedFile{{Path: filepath.Base(absPath), Content: content}}); err != nil {
		return describe(err, absPath)
	}
	fmt.Fprintf(cfg.out(), "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2ts configuration (YAML)
# All fields are optional. Command-line flags override config values.
# Keys are shared by every command; each command reads the ones it uses.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Output directory (generate: src/api, models: src/models).
# out: ./src/api

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Override the package name derived from the document title.
# packageName: "@acme/api"

# Override the URL prefix derived from the first server.
# basePath: /api/v1

# Renderers to run: spec-function, service-axios, service-fetch, service-umi.
# renderers: [service-axios]

# Query hook libraries to target: react-query, vue-query.
# terminals: [react-query]

# Write index.ts barrels under each renderer's root.
# barrels: true

# Run prettier on generated files.
# format: false

# Note recorded in the IR describing who retries failed requests.
# retryOwnership: client

# How generated code imports its HTTP client (global|local|package).
# clientMode: global
# clientPath: ./client
# clientPackage: "@acme/http"
# clientImportName: client

# How generated code imports model types (package|relative).
# modelImportType: relative
# modelRelativePath: ../models
# modelPackagePath: "@acme/models"

# Write the transformed IR as JSON.
# irSnapshot: ./ir.json

# Write the execution report as JSON.
# report: ./report.json

# models: declaration (.d.ts) or module (.ts) output.
# style: module

# models: only render these schemas.
# models: [Order, OrderStatus]

# models: enum patch document to merge, and who wins on conflict.
# enumPatch: ./enum-patches.json
# conflictPolicy: patch-first

# enum-patch: live API access. SWAGGER2TS_ENUM_BASE_URL and
# SWAGGER2TS_ENUM_TOKEN are read from envFile or the environment when unset.
# baseUrl: https://api.example.com
# token: ""
# envFile: .env
# namingStrategy: auto
# maxRetries: 3
# timeoutMs: 10000
# rateLimit: 5

# barrels: directory to scan and barrel roots within it.
# dir: ./src
# roots: [api, models]

# Preview planned outputs without writing files.
# dryRun: false

# Logging.
# verbose: false
# logJson: false
`
