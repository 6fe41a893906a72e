package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendboard/internal/format"
	"spendboard/internal/storage"
)

var errNoHistory = errors.New("load history is disabled: set SQLITE_DB_PATH or --db")

func (c *CLI) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded dataset loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if c.cfg.SQLiteDBPath == "" {
				return errNoHistory
			}
			repo, err := storage.NewSQLiteRepository(c.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			version, dirty, err := storage.SchemaVersion(c.cfg.SQLiteDBPath)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			snaps, err := repo.Latest(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema version %d", version)
			if dirty {
				fmt.Fprint(out, " (dirty)")
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLOADED AT\tSTATUS\tFINGERPRINT\tSUPPLIERS\tWARNINGS\t2025\tTOP5\tERROR")
			for _, s := range snaps {
				fp := s.Fingerprint
				if len(fp) > 12 {
					fp = fp[:12]
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					s.ID, s.LoadedAt.Local().Format("2006-01-02 15:04:05"), s.Status, fp,
					s.SupplierRows, s.Warnings, format.Wan(s.Total2025), format.Percent(s.Top5Share), s.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of loads to show")
	return cmd
}
