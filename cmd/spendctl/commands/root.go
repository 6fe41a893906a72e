// Package commands implements the spendctl commands.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"spendboard/internal/backend"
	"spendboard/internal/config"
	"spendboard/internal/dataset"
	applog "spendboard/internal/log"
	"spendboard/internal/risk"
)

// CLI holds the configuration shared by all commands.
type CLI struct {
	cfg     *config.Config
	logger  *applog.Logger
	rootCmd *cobra.Command
}

// New creates the command tree. Flags override cfg.
func New(cfg *config.Config, logger *applog.Logger) *CLI {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	rootCmd := &cobra.Command{
		Use:           "spendctl",
		Short:         "Inspect procurement spend extracts and dashboard history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{cfg: cfg, logger: logger, rootCmd: rootCmd}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DataSource, "source", cfg.DataSource, "Data source: file, s3, sheets or memory")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the CSV extracts (file source)")
	flags.StringVar(&cfg.SQLiteDBPath, "db", cfg.SQLiteDBPath, "Load history database")
	flags.StringVar(&cfg.RiskRegisterFile, "register", cfg.RiskRegisterFile, "Risk register YAML (built-in when empty)")

	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newSummaryCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newRefreshCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) load(ctx context.Context) (*dataset.Dataset, error) {
	reader, err := backend.NewFactory(c.logger.Logger).NewReader(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	return dataset.NewLoader(reader).Load(ctx)
}

func (c *CLI) register() (*risk.Register, error) {
	if c.cfg.RiskRegisterFile == "" {
		return risk.DefaultRegister()
	}
	reg, err := risk.LoadRegister(c.cfg.RiskRegisterFile)
	if err != nil {
		return nil, fmt.Errorf("load risk register: %w", err)
	}
	return reg, nil
}
