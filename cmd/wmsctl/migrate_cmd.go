package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wmsadmin/infrastructure/sqlite"
)

func newMigrateCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and list what is applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := global.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := sqlite.AppliedMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MIGRATION\tCHECKSUM")
			for _, m := range applied {
				fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Checksum)
			}
			return tw.Flush()
		},
	}
}
