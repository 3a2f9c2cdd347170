package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	web "followup/internal/adapters/http"
	"followup/internal/application/orchestrators"
)

func newID() string {
	return uuid.New().String()
}

func (a *app) generateCmd() *cobra.Command {
	var (
		replace   bool
		weekStart string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate this week's follow-up assignments",
		Long: `Distributes every person on the roster across approved servants of the
same gender, round-robin after a shuffle. A week that already has
assignments is left alone unless --replace is given or the configured
policy is "replace".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()
			stores := web.NewStores(db)

			if !cmd.Flags().Changed("replace") {
				replace = a.cfg.ReplaceByDefault()
			}
			result, err := orchestrators.ExecuteGenerateAssignments(cmd.Context(), orchestrators.GenerateAssignmentsInput{
				WeekStart: weekStart,
				Replace:   replace,
			}, orchestrators.GenerateAssignmentsDeps{
				PersonStore:     stores.People,
				AccountStore:    stores.Accounts,
				ProfileStore:    stores.Profiles,
				AssignmentStore: stores.Assignments,
				WeekStartDay:    a.cfg.WeekStartDay,
				Now:             time.Now,
				GenerateID:      newID,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, result, func(w io.Writer) {
				printGenerateResult(w, result)
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "overwrite assignments already generated for the week")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "any date YYYY-MM-DD in the target week (default: current week)")
	cmd.Flags().StringVarP(&format, "format", "o", FormatTable, "output format: table, json or yaml")
	return cmd
}

func printGenerateResult(w io.Writer, r orchestrators.GenerateAssignmentsResult) {
	heading.Fprintf(w, "Week of %s\n", r.WeekStart)
	fmt.Fprintf(w, "  created:  %s\n", good.Sprint(r.Created))
	if r.Replaced > 0 {
		fmt.Fprintf(w, "  replaced: %s\n", warn.Sprint(r.Replaced))
	}
	for _, gender := range slices.Sorted(maps.Keys(r.Unassigned)) {
		ids := r.Unassigned[gender]
		fmt.Fprintf(w, "  %s %d %s people have no servant\n", bad.Sprint("unassigned:"), len(ids), gender)
	}
}
