package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eventboard/internal/adapters/discord"
	"eventboard/internal/infrastructure/database"
	"eventboard/internal/infrastructure/i18n"
	"eventboard/pkg/tz"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SkipMigrations bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve the event board",
		Long: `Apply pending migrations, connect to PostgreSQL and Discord, then serve
commands and reactions until interrupted. Maintenance runs in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipMigrations, "skip-migrations", false, "do not apply migrations on startup")

	return cmd
}

func runBot(ctx context.Context, opts *RunOptions) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	loc, err := tz.Load(cfg.Timezone)
	if err != nil {
		return err
	}
	tr, err := i18n.NewTranslator(cfg.Locale)
	if err != nil {
		return err
	}
	if !tr.Supported(cfg.Locale) {
		return fmt.Errorf("config: DEFAULT_LOCALE %q n'a pas de traduction", cfg.Locale)
	}

	if !opts.SkipMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("erreur lors des migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("erreur lors de l'initialisation de la base de données: %w", err)
	}
	defer pool.Close()

	bot, err := discord.NewBot(cfg, database.NewGuildRepository(pool), tr, loc)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}
