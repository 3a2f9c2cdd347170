package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	web "followup/internal/adapters/http"
	"followup/internal/application/orchestrators"
	"followup/internal/config"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var input orchestrators.CreateAccountInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		Long: `Creates an approved administrator. Flags left empty fall back to the
admin.* configuration keys, so FOLLOWUP_ADMIN_PASSWORD can keep the
password out of shell history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input = withAdminDefaults(input, a.cfg.Admin)

			db, err := a.openDB(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()
			stores := web.NewStores(db)

			id, err := orchestrators.ExecuteCreateAdmin(cmd.Context(), input, orchestrators.CreateAccountDeps{
				MemberStore: stores.Members,
				Now:         time.Now,
				GenerateID:  newID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", good.Sprint("created admin"), input.Email, id)
			return nil
		},
	}

	create.Flags().StringVar(&input.Email, "email", "", "admin email")
	create.Flags().StringVar(&input.Password, "password", "", "admin password (at least 12 characters)")
	create.Flags().StringVar(&input.Name, "name", "", "display name")
	create.Flags().StringVar(&input.Gender, "gender", "", "male or female")

	cmd.AddCommand(create)
	return cmd
}

// withAdminDefaults fills empty fields of in from configuration.
func withAdminDefaults(in orchestrators.CreateAccountInput, def config.Admin) orchestrators.CreateAccountInput {
	if in.Email == "" {
		in.Email = def.Email
	}
	if in.Password == "" {
		in.Password = def.Password
	}
	if in.Name == "" {
		in.Name = def.Name
	}
	if in.Gender == "" {
		in.Gender = def.Gender
	}
	return in
}
