// Package main is the entry point of questd, the Gift Quest server and tools.
// It only handles flag parsing, dependency injection and process lifecycle.
// NO game logic belongs here.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/GiftQuest/server/internal/platform/config"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "questd",
		Short:         "Gift Quest server and tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "quest.yaml", "path to the YAML config file (optional)")

	root.AddCommand(
		newServeCmd(opts),
		newSimulateCmd(opts),
		newJournalCmd(opts),
		newAgitateCmd(),
	)
	return root
}

// load reads the configuration and builds the logger it asks for.
func (o *rootOptions) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
