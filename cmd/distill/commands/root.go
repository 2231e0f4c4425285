// Package commands provides the CLI commands for distill.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/silverl/distill/internal/config"
	"github.com/silverl/distill/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs  bool
	logLevel   string
	logFile    bool
	showConfig bool
	workDir    string
)

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Distill - turn session logs and feeds into journals and blog posts",
	Long: `Distill ingests AI coding-assistant session logs and external content
feeds, then synthesizes daily journal entries, weekly and thematic blog
posts, and per-platform publication artifacts.

Run 'distill run' to execute the full pipeline for a date range, or one
of 'distill journal', 'distill blog', 'distill publish' for a single stage.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Provider API keys may live in a local .env next to the config.
		_ = godotenv.Load()

		logCfg := logging.Config{
			Level:     logging.ParseLevel(logLevel),
			Output:    os.Stderr,
			Pretty:    printLogs,
			LogToFile: logFile,
		}
		if !printLogs && !logFile {
			// Disable logging output by default (only show fatal errors)
			logCfg.Level = logging.FatalLevel
		}
		logging.Init(logCfg)

		if logFile {
			logging.Info().
				Str("version", Version).
				Str("logFile", logging.GetLogFilePath()).
				Msg("distill started with file logging")
		}

		// Handle --show-config flag
		if showConfig {
			dir, err := GetWorkDir(workDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
				os.Exit(1)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}

			jsonData, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling config: %v\n", err)
				os.Exit(1)
			}

			fmt.Println(string(jsonData))
			os.Exit(0)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		cmd.Help()
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Write logs to /tmp/distill-YYYYMMDD-HHMMSS.log")
	rootCmd.PersistentFlags().BoolVar(&showConfig, "show-config", false, "Print merged configuration as JSON and exit")
	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "C", "", "Working directory to load project config from")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("distill %s (%s)\n", Version, BuildTime))

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(blogCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(noteCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
