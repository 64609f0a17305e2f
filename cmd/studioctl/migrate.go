package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wrapstudio/internal/db"
	"wrapstudio/internal/infra"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return errors.New("DATABASE_URL is required")
			}

			ctx := cmd.Context()
			database, err := infra.OpenSQLDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if !statusOnly {
				if err := db.Migrate(ctx, database); err != nil {
					return err
				}
			}

			statuses, err := db.Status(ctx, database)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tSOURCE")
			for _, st := range statuses {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", st.Source.Version, st.State, st.Source.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "only print migration status")
	return cmd
}
