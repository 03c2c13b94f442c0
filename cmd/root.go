package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"luadoxyxml/pkg/config"

	"github.com/spf13/cobra"
)

// Version information, set at build time with
// -ldflags "-X luadoxyxml/cmd.version=... -X luadoxyxml/cmd.commit=... -X luadoxyxml/cmd.date=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	configPath string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "luadoxyxml",
	Short: "A Lua Doxygen comment to Doxygen XML compiler",
	Long: `luadoxyxml is a CLI tool that parses Lua sources, binds their structured
comments (--! and --[[! ]]) to the declared variables, functions and tables,
and writes Doxygen XML compound files that Doxygen-consuming tools can merge
with the rest of a project's documentation.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("luadoxyxml %s\n", getVersionString())
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", getEnvOrDefault("LUADOXYXML_CONFIG", ""), "Configuration file (default "+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Log errors only")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(versionCmd)
}

// getEnvOrDefault gets an environment variable value or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// newLogger creates the diagnostics logger selected by --verbose and --quiet
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
