package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tmc/tikz"
)

var (
	cfgFile  string
	cacheDir string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "tikz",
	Short: "Extract TikZ figures from arXiv papers",
	Long: `tikz downloads arXiv e-print sources and extracts the TikZ figures
they contain (tikzpicture, tikzcd, circuitikz, and pgfplots axis
environments), together with captions, labels, and TikZ library usage.

Downloads and metadata are cached locally, so repeat extractions are
offline and instant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.config/tikz/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&cacheDir, "cache", "", "cache directory (default: ~/.cache/tikz)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log diagnostics to stderr",
	)

	rootCmd.AddCommand(
		extractCmd,
		listCmd,
		searchCmd,
		paperCmd,
		citationsCmd,
		referencesCmd,
		cacheCmd,
		versionCmd,
	)
}

// initConfig wires viper: flags override config file, config file overrides
// TIKZ_* environment variables, which override defaults.
func initConfig() error {
	home, _ := os.UserHomeDir()

	viper.SetDefault("cache_dir", filepath.Join(home, ".cache", "tikz"))
	viper.SetDefault("format", "tikz")
	viper.SetDefault("rate_limit", "3s")
	viper.SetDefault("scholar_api_key", "")

	viper.SetEnvPrefix("TIKZ")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(filepath.Join(home, ".config", "tikz"))
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if cacheDir == "" {
		cacheDir = viper.GetString("cache_dir")
	}
	return nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func openCache(log *zap.Logger) (*tikz.Cache, error) {
	cache, err := tikz.Open(cacheDir, log)
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", cacheDir, err)
	}
	return cache, nil
}

func newClient(cache *tikz.Cache, log *zap.Logger) *tikz.Client {
	interval, err := time.ParseDuration(viper.GetString("rate_limit"))
	if err != nil {
		interval = 0
	}
	return tikz.NewClient(&tikz.ClientOptions{
		MinInterval: interval,
		Cache:       cache,
		Logger:      log,
	})
}

var (
	statusColor = color.New(color.FgCyan)
	errColor    = color.New(color.FgRed, color.Bold)
)

// statusf writes progress to stderr so stdout stays clean for output that
// gets piped or redirected.
func statusf(format string, args ...any) {
	statusColor.Fprintf(os.Stderr, format+"\n", args...)
}

func errorf(format string, args ...any) {
	errColor.Fprintf(os.Stderr, format+"\n", args...)
}
