package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2ts/internal/enumpatch"
	"github.com/mark3labs/swagger2ts/internal/model"
	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

// Environment variables consulted when the base URL or token is not set.
const (
	EnvEnumBaseURL = "SWAGGER2TS_ENUM_BASE_URL"
	EnvEnumToken   = "SWAGGER2TS_ENUM_TOKEN"
)

// EnumPatchConfig captures the options for the enum-patch command.
type EnumPatchConfig struct {
	commonConfig

	Input          string
	Out            string
	BaseURL        string
	Token          string
	EnvFile        string
	NamingStrategy string
	MaxRetries     int
	TimeoutMs      int
	RateLimit      float64
	DryRun         bool
}

var enumPatchRunner = runEnumPatch

func newEnumPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enum-patch",
		Short: "Build an enum patch document from a live API",
		Long: "Find /Enums/GetAll<Name> endpoints whose <Name> is a schema, fetch each listing from the live API " +
			"and write suggested member names and comments as an enum patch document.",
		Example: strings.TrimSpace(`  swagger2ts enum-patch --input spec.yaml --base-url https://api.example.com --out enums.json
  swagger2ts enum-patch --input spec.yaml --env-file .env --naming-strategy none`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveEnumPatchConfig(cmd)
			if err != nil {
				return err
			}
			return enumPatchRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Where to write the patch document (default enum-patches.json)")
	flags.String("base-url", "", "Base URL of the live API (or "+EnvEnumBaseURL+")")
	flags.String("token", "", "Bearer token for the live API (or "+EnvEnumToken+")")
	flags.String("env-file", "", "Read "+EnvEnumBaseURL+" and "+EnvEnumToken+" from this .env file")
	flags.String("naming-strategy", "", "auto or none (default auto)")
	flags.Int("max-retries", 0, "Attempts per enum endpoint (default 3)")
	flags.Int("timeout-ms", 0, "Per-attempt timeout in milliseconds (default 10000)")
	flags.Float64("rate-limit", 0, "Maximum requests per second (default 5)")
	flags.Bool("dry-run", false, "Print the patch document instead of writing it")
	return cmd
}

func resolveEnumPatchConfig(cmd *cobra.Command) (*EnumPatchConfig, error) {
	defaults := enumpatch.DefaultSettings()
	cfg := EnumPatchConfig{
		Out:            "enum-patches.json",
		NamingStrategy: string(enumpatch.StrategyAuto),
		MaxRetries:     defaults.MaxRetries,
		TimeoutMs:      int(defaults.Timeout / time.Millisecond),
		RateLimit:      defaults.RequestsPerSecond,
	}
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
		file.str("baseurl", &cfg.BaseURL),
		file.str("token", &cfg.Token),
		file.str("envfile", &cfg.EnvFile),
		file.str("namingstrategy", &cfg.NamingStrategy),
		file.integer("maxretries", &cfg.MaxRetries),
		file.integer("timeoutms", &cfg.TimeoutMs),
		file.float("ratelimit", &cfg.RateLimit),
		file.boolean("dryrun", &cfg.DryRun),
	} {
		if err != nil {
			return nil, err
		}
	}

	o := &flagOverrides{flags: flags}
	o.str("input", &cfg.Input)
	o.str("out", &cfg.Out)
	o.str("base-url", &cfg.BaseURL)
	o.str("token", &cfg.Token)
	o.str("env-file", &cfg.EnvFile)
	o.str("naming-strategy", &cfg.NamingStrategy)
	o.integer("max-retries", &cfg.MaxRetries)
	o.integer("timeout-ms", &cfg.TimeoutMs)
	o.float("rate-limit", &cfg.RateLimit)
	o.boolean("dry-run", &cfg.DryRun)
	if o.err != nil {
		return nil, o.err
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvironment fills the base URL and token from the .env file, then from
// the process environment. Explicit values always win.
func (c *EnumPatchConfig) applyEnvironment() error {
	env := map[string]string{}
	if c.EnvFile != "" {
		values, err := godotenv.Read(c.EnvFile)
		if err != nil {
			return newUsageError(fmt.Sprintf("enum-patch: read env file %q: %v", c.EnvFile, err))
		}
		env = values
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(env[key]); v != "" {
			return v
		}
		return strings.TrimSpace(os.Getenv(key))
	}
	if c.BaseURL == "" {
		c.BaseURL = lookup(EnvEnumBaseURL)
	}
	if c.Token == "" {
		c.Token = lookup(EnvEnumToken)
	}
	return nil
}

func (c *EnumPatchConfig) validate() error {
	if c.Input == "" {
		return newUsageError("enum-patch: --input is required (set via flag or config file)")
	}
	if c.BaseURL == "" {
		return newUsageError("enum-patch: --base-url is required (or set " + EnvEnumBaseURL + ")")
	}
	if c.Out == "" && !c.DryRun {
		return newUsageError("enum-patch: --out must not be empty")
	}
	if _, err := enumpatch.ParseStrategy(c.NamingStrategy); err != nil {
		return newUsageError("enum-patch: " + err.Error())
	}
	if c.MaxRetries < 1 {
		return newUsageError(fmt.Sprintf("enum-patch: --max-retries must be at least 1, got %d", c.MaxRetries))
	}
	if c.TimeoutMs < 1 {
		return newUsageError(fmt.Sprintf("enum-patch: --timeout-ms must be positive, got %d", c.TimeoutMs))
	}
	if c.RateLimit < 0 {
		return newUsageError("enum-patch: --rate-limit must not be negative")
	}
	return nil
}

func runEnumPatch(ctx context.Context, cfg *EnumPatchConfig) error {
	log := cfg.logger()
	defer func() { _ = log.Sync() }()

	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(log))
	if err != nil {
		return describe(err, cfg.Input)
	}
	fetcher := enumpatch.NewFetcher(cfg.BaseURL,
		enumpatch.WithMaxRetries(cfg.MaxRetries),
		enumpatch.WithTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond),
		enumpatch.WithRate(cfg.RateLimit),
		enumpatch.WithToken(cfg.Token),
		enumpatch.WithLogger(log),
	)
	strategy, _ := enumpatch.ParseStrategy(cfg.NamingStrategy)
	patches, err := enumpatch.Run(ctx, doc, enumpatch.Config{Fetcher: fetcher, Strategy: strategy, Logger: log})
	if err != nil {
		return describe(err, cfg.Input)
	}

	if cfg.DryRun {
		data, err := model.MarshalEnumPatchDocument(patches)
		if err != nil {
			return err
		}
		_, err = cfg.out().Write(data)
		return err
	}

	abs, err := filepath.Abs(cfg.Out)
	if err != nil {
		return newUsageError(fmt.Sprintf("enum-patch: resolve output path: %v", err))
	}
	changed, err := enumpatch.Write(writer.NewFS(filepath.Dir(abs), log), filepath.Base(abs), patches)
	if err != nil {
		return describe(err, cfg.Input)
	}
	state := "unchanged"
	if changed {
		state = "written"
	}
	fmt.Fprintf(cfg.out(), "Enum patches for %d enums %s to %s\n", len(patches.Patches), state, abs)
	return nil
}
