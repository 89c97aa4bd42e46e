// Package commands implements CLI commands.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/datatables-go/internal/app"
	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/satishbabariya/datatables-go/internal/ui"
	"github.com/satishbabariya/datatables-go/internal/version"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "datatables",
		Short:         "Server-side table rendering over SQL",
		Long:          "datatables serves paginated, searchable, sortable table data from SQL databases",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Out = cmd.OutOrStdout()
			ui.Err = cmd.ErrOrStderr()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default searches ./.datatables.yaml and $HOME)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// load reads configuration and initializes logging.
func (o *rootOptions) load() (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(o.configFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	app.InitLogging(cfg.Logging)
	return loader, cfg, nil
}

// container builds the dependency container, connecting to the database
// when connect is set.
func (o *rootOptions) container(ctx context.Context, connect bool) (*config.Loader, *app.Container, error) {
	loader, cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	if connect {
		if err := c.Connect(ctx); err != nil {
			_ = c.Close(ctx)
			return nil, nil, err
		}
	}
	return loader, c, nil
}
