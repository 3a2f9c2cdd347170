package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"followup/internal/adapters/http/perf"
	"followup/internal/adapters/storage"
	"followup/internal/config"
	"followup/internal/logging"
)

const programName = "followup"

// app carries state shared by every subcommand once the root has loaded
// configuration.
type app struct {
	opts    config.Options
	debug   bool
	noColor bool
	cfg     config.Config
}

// NewRootCmd builds the followup command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           programName,
		Short:         "Weekly follow-up tracker for church attendance",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `followup keeps a roster of attendees, records weekly attendance and
hands each approved servant a balanced list of people to call every week.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.opts)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if a.debug {
				cfg.LogLevel = "debug"
			}
			if a.noColor {
				color.NoColor = true
			}
			a.cfg = cfg
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.opts.ConfigFile, "config", "", "path to config file (default ./followup.yaml if present)")
	root.PersistentFlags().StringVar(&a.opts.DotEnv, "env-file", "", "path to .env file (default ./.env if present)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "D", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.generateCmd(),
		a.statsCmd(),
		a.adminCmd(),
	)
	return root
}

// openDB opens and migrates the configured database behind a timing wrapper.
// POST: caller must Close the returned TimedDB
func (a *app) openDB(ctx context.Context, metrics *perf.Metrics) (*storage.TimedDB, error) {
	db, err := storage.OpenAndMigrate(ctx, a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return storage.NewTimedDB(db, metrics, a.cfg.SlowQuery), nil
}
