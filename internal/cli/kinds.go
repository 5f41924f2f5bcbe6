package cli

import (
	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/drupal"
)

// kindRow is the JSON shape of one migration kind.
type kindRow struct {
	ID       string `json:"id"`
	Taxonomy bool   `json:"taxonomy"`
}

func addKindsCommand(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "kinds",
		Short: "List the ingest migrations idce2e can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.output(cmd)
			if err != nil {
				return err
			}
			kinds := drupal.MigrationKinds()
			if a.flags.Output == OutputJSON {
				rows := make([]kindRow, 0, len(kinds))
				for _, k := range kinds {
					rows = append(rows, kindRow{ID: k.ID(), Taxonomy: k.IsTaxonomy()})
				}
				return out.JSON(rows)
			}

			rows := make([][]string, 0, len(kinds))
			for _, k := range kinds {
				group := "content"
				if k.IsTaxonomy() {
					group = "taxonomy"
				}
				rows = append(rows, []string{k.ID(), group})
			}
			out.Table([]string{"MIGRATION", "GROUP"}, rows)
			return nil
		},
	})
}
