// file: internals/cli/probe.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
)

// NewProbeCommand prints which optional columns and unique keys the live
// schema carries.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "probe",
		Short:        "Report schema capabilities used by the write fallbacks",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := database.ConnectDB()
			defer database.Close(db)
			return writeProbe(cmd.OutOrStdout(), db)
		},
	}
}

func writeProbe(w io.Writer, db *gorm.DB) error {
	sc := database.ProbeSchema(db)
	for _, col := range []database.Column{database.AttendanceSchoolYearColumn, database.PayrollSchoolYearColumn} {
		if _, err := fmt.Fprintf(w, "column %s.%s\t%s\n", col.Table, col.Name, presence(sc.SupportsColumn(col))); err != nil {
			return err
		}
	}
	for _, key := range []database.UniqueKey{database.AttendanceEnrollmentKey, database.AttendanceLegacyKey} {
		if _, err := fmt.Fprintf(w, "unique %s\t%s\n", key.Constraint, presence(sc.ConflictKeyAvailable(key))); err != nil {
			return err
		}
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
