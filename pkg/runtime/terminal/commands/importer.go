package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/store/fixture"
)

func NewImportCmd(getApp AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dataset.yaml>",
		Short: "Load a YAML dataset into the DuckDB store",
		Long: "Validate a dataset file and write its regions and snapshots into the\n" +
			"DuckDB database at duckdb.path. Snapshots already stored for the same\n" +
			"region and year are replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := getApp()

			src, err := fixture.Load(args[0])
			if err != nil {
				return err
			}
			importer, err := a.Importer()
			if err != nil {
				return err
			}

			res, err := importer.Import(ctx, src)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d regions, %d snapshots (%d records) into %s\n",
				res.Regions, res.Snapshots, res.Records, a.Config.DuckDB.Path)
			return nil
		},
	}
}
