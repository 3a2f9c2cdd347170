package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"followup/internal/adapters/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good.Sprint("migrated"), a.cfg.DBPath)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether each is applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.Open(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			statuses, err := storage.Status(cmd.Context(), db)
			if err != nil {
				return err
			}
			printMigrations(cmd.OutOrStdout(), statuses)
			return nil
		},
	}

	// Bare "migrate" means "migrate up".
	cmd.RunE = up.RunE
	cmd.AddCommand(up, status)
	return cmd
}

func printMigrations(w io.Writer, statuses []storage.MigrationStatus) {
	heading.Fprintln(w, "Migrations")
	for _, s := range statuses {
		state := warn.Sprint("pending")
		if s.Applied {
			state = good.Sprint("applied")
		}
		fmt.Fprintf(w, "  %05d  %-30s %s\n", s.Version, s.Name, state)
	}
}
