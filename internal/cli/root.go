package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/logging"
)

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger2ts",
		Short: "Generate TypeScript API clients from Swagger/OpenAPI documents",
		Long: "swagger2ts turns Swagger/OpenAPI documents into typed TypeScript request functions, " +
			"service classes, query hooks and model declarations.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	for _, sub := range []*cobra.Command{
		cmd,
		newGenerateCmd(),
		newModelsCmd(),
		newEnumPatchCmd(),
		newBarrelsCmd(),
		newInitCmd(),
	} {
		// Convert Cobra flag errors (like unknown flags) into friendly usage
		// errors that also show the command's help text.
		sub.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
			return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
		})
		if sub != cmd {
			cmd.AddCommand(sub)
		}
	}
	return cmd
}

// commonConfig holds settings every command shares.
type commonConfig struct {
	ConfigPath string
	Verbose    bool
	LogJSON    bool

	stdout io.Writer
	stderr io.Writer
}

func (c *commonConfig) apply(file configValues, flags *pflag.FlagSet) error {
	if err := file.boolean("verbose", &c.Verbose); err != nil {
		return err
	}
	if err := file.boolean("logjson", &c.LogJSON); err != nil {
		return err
	}
	o := &flagOverrides{flags: flags}
	o.boolean("verbose", &c.Verbose)
	o.boolean("log-json", &c.LogJSON)
	return o.err
}

func (c *commonConfig) bind(cmd *cobra.Command, path string) {
	c.ConfigPath = path
	c.stdout = cmd.OutOrStdout()
	c.stderr = cmd.ErrOrStderr()
}

func (c *commonConfig) out() io.Writer {
	if c.stdout == nil {
		return io.Discard
	}
	return c.stdout
}

func (c *commonConfig) logger() *zap.SugaredLogger {
	if c.stderr == nil {
		return logging.Nop()
	}
	return logging.New(c.stderr, c.Verbose, c.LogJSON)
}
