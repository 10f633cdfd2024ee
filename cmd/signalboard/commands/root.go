package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signalboard",
	Short: "Signalboard - AI 주식 추천 사이트 + API",
	Long: `Signalboard Unified CLI

마케팅 사이트, 읽기 전용 JSON API, 뉴스레터, 대시보드를 하나의 바이너리로 제공합니다.

Usage:
  go run ./cmd/signalboard [command]

Examples:
  go run ./cmd/signalboard api
  go run ./cmd/signalboard scheduler start
  go run ./cmd/signalboard cron daily
  go run ./cmd/signalboard test-db`,
	SilenceUsage:      true,
	PersistentPreRunE: applyGlobalFlags,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// applyGlobalFlags turns global flags into the environment config.Load reads
func applyGlobalFlags(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			return fmt.Errorf("load %s: %w", configFile, err)
		}
	}
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return err
		}
	}
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			return err
		}
		if err := os.Setenv("LOG_FORMAT", "console"); err != nil {
			return err
		}
	}
	return nil
}
