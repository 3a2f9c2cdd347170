package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	web "followup/internal/adapters/http"
	"followup/internal/application/projections"
	"followup/internal/domain/attendance"
)

func (a *app) statsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the attendance summary for the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()
			stores := web.NewStores(db)

			stats, err := projections.QueryGetAttendanceStats(cmd.Context(), projections.GetAttendanceStatsDeps{
				PersonStore:     stores.People,
				AttendanceStore: stores.Attendance,
				MemberStore:     stores.Members,
				WeekStartDay:    a.cfg.WeekStartDay,
				Now:             time.Now,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, stats, func(w io.Writer) {
				printStats(w, stats)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", FormatTable, "output format: table, json or yaml")
	return cmd
}

func printStats(w io.Writer, s attendance.Stats) {
	heading.Fprintf(w, "Week of %s\n", s.WeekStart)
	fmt.Fprintf(w, "  %-22s %d (%d male, %d female)\n", "people", s.Total, s.Male, s.Female)
	fmt.Fprintf(w, "  %-22s %s\n", "present this week", good.Sprint(s.Present))
	fmt.Fprintf(w, "  %-22s %s\n", "absent this week", countColor(s.Absent).Sprint(s.Absent))
	fmt.Fprintf(w, "  %-22s %s\n", "absent 1+ weeks", countColor(s.Absent1w).Sprint(s.Absent1w))
	fmt.Fprintf(w, "  %-22s %s\n", "absent 3+ weeks", countColor(s.Absent3w).Sprint(s.Absent3w))
	fmt.Fprintf(w, "  %-22s %d\n", "never attended", s.NeverAttended)
	fmt.Fprintf(w, "  %-22s %d\n", "approved servants", s.ApprovedMembers)
	fmt.Fprintf(w, "  %-22s %s\n", "pending requests", countColor(s.PendingRequests).Sprint(s.PendingRequests))
}
