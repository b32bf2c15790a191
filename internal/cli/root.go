package cli

import (
	"github.com/spf13/cobra"

	"eventboard/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	MigrationsPath string

	// LoadConfig reads the configuration; tests replace it.
	LoadConfig func() (*config.Config, error)
}

// NewRootCommand creates the root command of the eventboard bot.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.Load}

	cmd := &cobra.Command{
		Use:   "eventboard",
		Short: "Discord event board bot",
		Long: `eventboard lets a Discord community plan events in a dedicated channel.
Members create events through a private dialogue and answer with reactions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.MigrationsPath, "migrations", "", "migrations directory (overrides MIGRATIONS_PATH)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

func (o *RootOptions) config() (*config.Config, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.MigrationsPath != "" {
		cfg.MigrationsPath = o.MigrationsPath
	}
	return cfg, nil
}
