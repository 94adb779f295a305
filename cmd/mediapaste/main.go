package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sipeed/mediapaste/pkg/config"
	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mediapaste", "config.json")
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mediapaste",
		Short:         "Insert media into markdown documents by reference",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "path to config.json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newInsertCommand(opts))
	root.AddCommand(newPolicyCommand())
	return root
}

// loadConfig reads the config file and applies its logging section.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", o.configPath, err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if o.verbose {
		logger.SetLevel(logger.DEBUG)
	}
	if cfg.Logging.FileEnabled {
		path := config.ExpandHome(cfg.Logging.FilePath)
		if err := logger.EnableFileLoggingWithRotation(path, cfg.Logging.RotationEnabled, cfg.Logging.MaxSizeMB, cfg.Logging.MaxAgeDays); err != nil {
			logger.WarnCF("cli", "File logging unavailable", map[string]interface{}{"error": err.Error()})
		}
	}
	return cfg, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
