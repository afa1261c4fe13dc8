package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/agri-atlas/pkg/runtime/app"
	"github.com/de-tools/agri-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/agri-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/agri-atlas/pkg/services/config"
)

// BootstrapFunc assembles the application from the loaded configuration.
type BootstrapFunc func(ctx context.Context, cfg *config.Config) (*app.App, error)

// CLI represents the command-line interface
type CLI struct {
	opts     Options
	app      *app.App
	reporter *export.Reporter
	rootCmd  *cobra.Command

	cfgPath  string
	logLevel string
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
	// Bootstrap defaults to app.New.
	Bootstrap BootstrapFunc
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Bootstrap == nil {
		opts.Bootstrap = app.New
	}

	cli := &CLI{
		opts:     opts,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.Run(context.Background(), nil)
}

// Run executes the command line in args. A nil args reads os.Args.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	defer cli.close()

	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "agri-atlas",
		Short:             "Agricultural statistics reports for Indian states",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.bootstrap,
	}
	cmd.SetOut(cli.opts.Output)
	cmd.SetErr(cli.opts.ErrOutput)

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to the config file (default ./"+config.DefaultFile+" when present)")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Override log.level")

	getApp := func() *app.App { return cli.app }

	cmd.AddCommand(commands.NewRegionsCmd(getApp, cli.reporter))
	cmd.AddCommand(commands.NewReportsCmd(getApp, cli.reporter))
	cmd.AddCommand(commands.NewShowCmd(getApp, cli.reporter))
	cmd.AddCommand(commands.NewExportCmd(getApp))
	cmd.AddCommand(commands.NewImportCmd(getApp))
	cmd.AddCommand(commands.NewServeCmd(getApp))
	cmd.AddCommand(commands.NewAskCmd(getApp))
	cmd.AddCommand(commands.NewPredictCmd(getApp))

	return cmd
}

func (cli *CLI) bootstrap(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(config.ResolvePath(cli.cfgPath))
	if err != nil {
		return err
	}
	if cli.logLevel != "" {
		cfg.Log.Level = cli.logLevel
	}

	logger, err := app.NewLogger(zerolog.ConsoleWriter{Out: cli.opts.ErrOutput, NoColor: true}, cfg.Log.Level)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	a, err := cli.opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	cli.app = a
	return nil
}

func (cli *CLI) close() {
	if cli.app == nil {
		return
	}
	if err := cli.app.Close(); err != nil {
		fmt.Fprintf(cli.opts.ErrOutput, "failed to close: %v\n", err)
	}
	cli.app = nil
}
