package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/output"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	verboseFlag bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "Keep your HTTP requests in a satchel.",
	Long: `satchel stores parameterized HTTP and GraphQL requests, replays them
against named environments, and remembers what happened. Templates use
{{variable}} placeholders resolved from environments, OS variables and
builtin value functions at send time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors map to exit codes by fault kind.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		formatter := output.NewConsoleFormatter(output.WithNoColor(noColorFlag))
		formatter.FormatError(err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show request and response details")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("SATCHEL_NO_COLOR", false), "Disable colored output (env: SATCHEL_NO_COLOR)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(graphqlCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(docsCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
