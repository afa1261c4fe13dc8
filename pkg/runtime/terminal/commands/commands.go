// Package commands holds the agri-atlas subcommands. Each command receives
// the application assembled by the root command's pre-run hook.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/runtime/app"
)

// AppFunc returns the application built for the running command.
type AppFunc func() *app.App

type selectionFlags struct {
	region string
	year   int
	season string
	view   string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", domain.AllRegions, "Region id, or \"all\"")
	cmd.Flags().IntVar(&f.year, "year", 0, "Reporting year")
	cmd.Flags().StringVar(&f.season, "season", "", "Season to analyze: kharif, rabi or zaid (default all)")
	cmd.Flags().StringVar(&f.view, "view", string(domain.ViewOverview), "overview or comparison")

	_ = cmd.MarkFlagRequired("year")
}

func (f *selectionFlags) selection() (domain.Selection, error) {
	season, err := domain.ParseSeason(f.season)
	if err != nil {
		return domain.Selection{}, err
	}
	view, err := domain.ParseViewMode(f.view)
	if err != nil {
		return domain.Selection{}, err
	}
	sel := domain.Selection{
		Region:   strings.TrimSpace(f.region),
		Year:     f.year,
		Season:   season,
		ViewMode: view,
	}
	if err := sel.Validate(); err != nil {
		return domain.Selection{}, fmt.Errorf("invalid selection: %w", err)
	}
	return sel, nil
}

func reportType(arg string) domain.ReportType {
	return domain.ReportType(strings.ToLower(strings.TrimSpace(arg)))
}
