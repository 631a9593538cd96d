package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"healthbridge/internal/triage"
)

func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate condition catalogs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			catalog := engine.Catalog()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog version %s (%d conditions)\n\n", catalog.Version(), catalog.Len())
			for _, e := range catalog.Entries() {
				fmt.Fprintf(out, "%-20s %-7s %s\n", e.Title, e.Urgency, strings.Join(e.Keywords, ", "))
			}
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a YAML catalog loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := triage.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d conditions)\n", args[0], catalog.Version(), catalog.Len())
			return nil
		},
	}

	cmd.AddCommand(list, validate)
	return cmd
}
