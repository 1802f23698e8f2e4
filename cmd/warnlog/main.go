package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eslreporter/warnlog/internal/config"
	"github.com/eslreporter/warnlog/internal/logging"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	configPath string
	logLevel   string
	logFile    string

	// Set up by setup before any command that needs them runs.
	cfg      = defaultConfig()
	logger   = slog.New(slog.DiscardHandler)
	closeLog = func() error { return nil }
)

// skipSetup marks commands that run without loading the configuration.
const skipSetup = "skip-setup"

func main() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warnlog",
	Short: "Dawn of War II: Retribution match log parser",
	Long: `warnlog rebuilds Dawn of War II: Retribution matches from the game's
warnings.txt log.

It can print the matches a log contains, follow the log while the game
runs, upload finished matches to the ESL ladder and keep a local match
history.

This is an unofficial tool and is not affiliated with Relic Entertainment.`,
	SilenceUsage:      true, // Don't show usage on error
	PersistentPreRunE: setup,
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Also write debug logs to this file (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func defaultConfig() *config.Config {
	c := config.Default()
	return &c
}

// setup loads the configuration, applies the global flags and builds the
// logger.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFile != "" {
		c.Log.File = logFile
	}

	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	l, closer, err := logging.New(cmd.ErrOrStderr(), level, c.Log.File)
	if err != nil {
		return err
	}

	cfg = c
	logger = l
	closeLog = closer
	return nil
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipSetup: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "warnlog %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Print a completion script for warnlog to stdout.

The game runs on Windows, so PowerShell is the usual choice:
  PS> warnlog completion powershell | Out-String | Invoke-Expression

From Git Bash or WSL:
  $ source <(warnlog completion bash)`,
	DisableFlagsInUseLine: true,
	Annotations:           map[string]string{skipSetup: "true"},
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return rootCmd.GenBashCompletionV2(out, true)
		}
	},
}
