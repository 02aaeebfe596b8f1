package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tim-vk/dockerfile-parse/pkg/logger"
	"github.com/tim-vk/dockerfile-parse/pkg/version"
)

var (
	debugMode bool
	logLevel  string
	cfgFile   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dockerfileparse",
	Short: "Parse, inspect, and rewrite Dockerfiles",
	Long: `dockerfileparse is a library and CLI for parsing Dockerfiles into a
structure-preserving representation, inspecting base images, labels,
environment variables and build args, and applying targeted rewrites
without disturbing the rest of the file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a dockerfileparse config file")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogger() {
	log := logger.GetLogger()

	if debugMode {
		log.SetLevel(logger.DebugLevel)
		return
	}

	switch logLevel {
	case "debug":
		log.SetLevel(logger.DebugLevel)
	case "info":
		log.SetLevel(logger.InfoLevel)
	case "warn":
		log.SetLevel(logger.WarnLevel)
	case "error":
		log.SetLevel(logger.ErrorLevel)
	default:
		log.SetLevel(logger.InfoLevel)
	}
}

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()

		if versionJSON {
			fmt.Printf(`{
  "version": "%s",
  "gitCommit": "%s",
  "buildDate": "%s",
  "goVersion": "%s",
  "platform": "%s"
}
`, info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
			return
		}

		if versionShort {
			fmt.Println(info.Short())
			return
		}

		fmt.Println(info.String())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print a one-line version string with the short commit hash")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version information as JSON")
}
