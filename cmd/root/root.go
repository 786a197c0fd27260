// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/container"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/validation"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	Input      string
	Output     string
	Format     string
}

var (
	// AppContainer holds the wired services once PersistentPreRunE has run.
	AppContainer *container.Container

	// SharedFlags are accessible to all commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finance-advisor",
		Short: "A personal finance analysis and advisory CLI.",
		Long: `finance-advisor categorizes bank transactions, analyzes spending, scores
financial health, plans savings goals and answers financial questions grounded
on a built-in knowledge corpus. Run "finance-advisor serve" for the HTTP API.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			GetLogger().Info("Welcome to finance-advisor!")
			GetLogger().Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.IsValidOutputFormat(SharedFlags.Format); err != nil {
				return err
			}
			cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			AppContainer, err = container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			return nil
		},
		// Learned merchant mappings are saved whenever any command finishes.
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.GetCategorizer().SaveMappings(); err != nil {
				GetLogger().WithError(err).Warn("Failed to save merchant mappings")
			}
			if err := AppContainer.Close(); err != nil {
				GetLogger().WithError(err).Warn("Failed to release resources")
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: search .finance-advisor/config.yaml)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "json", "Output format: json or yaml")
}

// GetContainer returns the application container, or nil before
// initialization.
func GetContainer() *container.Container {
	return AppContainer
}

// GetLogger returns the container's logger, or a default logrus logger when
// the container is not initialized.
func GetLogger() logging.Logger {
	if AppContainer != nil {
		return AppContainer.GetLogger()
	}
	return logging.NewLogrusAdapter("info", "text")
}

// WriteResult renders v in the selected format to --output or to the
// command's standard output.
func WriteResult(cmd *cobra.Command, v interface{}) error {
	c, err := RequireContainer()
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		return c.GetRenderer().Write(w, v, SharedFlags.Format)
	})
}

// withOutput calls write with the --output file, or stdout when unset.
func withOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if SharedFlags.Output == "" {
		return write(cmd.OutOrStdout())
	}
	file, err := os.OpenFile(SharedFlags.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WithOutput is withOutput for commands that write their own encoding.
func WithOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	return withOutput(cmd, write)
}

// Context returns the command's context, or a background context when the
// command runs outside Execute.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// RequireContainer returns the container or an error when the root command's
// pre-run did not build it.
func RequireContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return AppContainer, nil
}
