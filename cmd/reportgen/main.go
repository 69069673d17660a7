package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/config"
	"github.com/thywilljoshua/survey-report/internal/logging"
)

// app is the state shared by subcommands once the root has run.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg    config.Config
	logger *zap.Logger
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "reportgen",
		Short:         "Generate personality survey reports as PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			if a.logJSON {
				cfg.Logging.JSON = true
			}
			a.cfg = cfg
			a.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.JSON)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit JSON logs")

	root.AddCommand(generateCmd(a), batchCmd(a), templatesCmd(a), planCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
