package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/runtime/terminal/export"
)

func NewRegionsCmd(getApp AppFunc, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List regions and the years with data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := getApp()

			regions, err := a.Provider.Regions(ctx)
			if err != nil {
				return fmt.Errorf("failed to list regions: %w", err)
			}

			rows := make([][]string, 0, len(regions))
			for _, r := range regions {
				years, err := a.Provider.Years(ctx, r.ID)
				if err != nil {
					return fmt.Errorf("failed to list years for %s: %w", r.ID, err)
				}
				labels := make([]string, len(years))
				for i, y := range years {
					labels[i] = strconv.Itoa(y)
				}
				rows = append(rows, []string{r.ID, r.Name, r.LocalName, strings.Join(labels, ", ")})
			}
			return reporter.Table([]string{"ID", "Name", "Local Name", "Years"}, rows)
		},
	}
}

func NewReportsCmd(getApp AppFunc, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the available report types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := getApp().Service

			var rows [][]string
			for _, t := range svc.ReportTypes() {
				a, err := svc.Analyzer(t)
				if err != nil {
					return err
				}
				rows = append(rows, []string{string(t), a.Title()})
			}
			return reporter.Table([]string{"Type", "Title"}, rows)
		},
	}
}
