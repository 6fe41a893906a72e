package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errWarnings is returned by validate --strict when rows were coerced.
var errWarnings = errors.New("extract has data warnings")

func (c *CLI) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configured extracts and report parse warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			ds, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := ds.Counts()
			fmt.Fprintf(out, "source:        %s\n", ds.Source)
			fmt.Fprintf(out, "fingerprint:   %s\n", ds.Fingerprint)
			fmt.Fprintf(out, "factories:     %d\n", rows.Factories)
			fmt.Fprintf(out, "suppliers:     %d\n", rows.Suppliers)
			fmt.Fprintf(out, "subcategories: %d\n", rows.Subcategories)
			fmt.Fprintf(out, "plants:        %d\n", len(ds.Plants))
			fmt.Fprintf(out, "warnings:      %d\n", len(ds.Warnings))
			for _, w := range ds.Warnings {
				fmt.Fprintf(out, "  - %s\n", w)
			}

			if strict && len(ds.Warnings) > 0 {
				return fmt.Errorf("%w: %d", errWarnings, len(ds.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().Bool("strict", false, "Fail when any cell could not be parsed")
	return cmd
}
