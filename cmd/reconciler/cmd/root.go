package cmd

import (
	"fmt"
	"os"

	"bank-ledger-reconciler/cmd/reconciler/config"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Bank to ledger reconciliation tool",
	Long: `Reconciler matches bank transactions against general-ledger entries,
reports every unmatched record as a delta and derives a PASSED or
REVIEW_REQUIRED verdict for the period.

Examples:
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv
  reconciler reconcile --bank-file bank.json --ledger-file ledger.json --output-format json
  reconciler serve --port 8080
  reconciler version`,
	Version:       getVersionString(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, YAML, JSON or TOML (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	config.ConfigureEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(4)
		}
	}

	logConfig, err := config.CreateLoggerConfig(viper.GetViper(), viper.GetBool("verbose"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %s\n", err)
		os.Exit(4)
	}
	log, err := logger.NewLogger(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %s\n", err)
		os.Exit(4)
	}
	logger.SetGlobalLogger(log)

	if cfgFile != "" {
		log.WithField("config_file", viper.ConfigFileUsed()).Debug("Using config file")
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
