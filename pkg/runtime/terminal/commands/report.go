package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/export"
	terminalexport "github.com/de-tools/agri-atlas/pkg/runtime/terminal/export"
)

type ShowCmd struct {
	selectionFlags
	getApp   AppFunc
	reporter *terminalexport.Reporter
}

func NewShowCmd(getApp AppFunc, reporter *terminalexport.Reporter) *cobra.Command {
	sc := &ShowCmd{getApp: getApp, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "show <report-type>",
		Short: "Print a report to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}
	sc.register(cmd)
	return cmd
}

func (sc *ShowCmd) run(cmd *cobra.Command, args []string) error {
	sel, err := sc.selection()
	if err != nil {
		return err
	}

	report, err := sc.getApp().Service.GenerateReport(cmd.Context(), reportType(args[0]), sel)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return sc.reporter.Handle(report)
}

type ExportCmd struct {
	selectionFlags
	formats []string
	dir     string
	sink    string
	getApp  AppFunc
}

func NewExportCmd(getApp AppFunc) *cobra.Command {
	ec := &ExportCmd{getApp: getApp}
	cmd := &cobra.Command{
		Use:   "export <report-type>",
		Short: "Export a report to the configured sink",
		Long: "Export a report in one or more formats (csv, xls, html, geojson, xlsx, png).\n" +
			"Files go to the local export directory or to the object storage sink\n" +
			"selected by export.sink.",
		Args: cobra.ExactArgs(1),
		RunE: ec.run,
	}
	ec.register(cmd)
	cmd.Flags().StringSliceVar(&ec.formats, "format", []string{string(export.FormatCSV)}, "Export formats, comma separated")
	cmd.Flags().StringVar(&ec.dir, "dir", "", "Override the local export directory")
	cmd.Flags().StringVar(&ec.sink, "sink", "", "Override the export sink: local, s3 or minio")
	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	a := ec.getApp()

	sel, err := ec.selection()
	if err != nil {
		return err
	}
	formats := make([]export.Format, 0, len(ec.formats))
	for _, f := range ec.formats {
		format, err := export.ParseFormat(f)
		if err != nil {
			return err
		}
		formats = append(formats, format)
	}

	if ec.dir != "" {
		a.Config.Export.Dir = ec.dir
	}
	if ec.sink != "" {
		a.Config.Export.Sink = ec.sink
	}
	sink, err := a.Sink(ctx)
	if err != nil {
		return fmt.Errorf("failed to open export sink: %w", err)
	}

	report, err := a.Service.GenerateReport(ctx, reportType(args[0]), sel)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	for _, format := range formats {
		artifact, err := a.Exporter.Export(report, format)
		if err != nil {
			return err
		}
		location, err := sink.Put(ctx, artifact)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", artifact.Filename, err)
		}
		logger.Debug().Str("format", string(format)).Int("bytes", len(artifact.Content)).Msg("export stored")
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", location)
	}
	return nil
}
