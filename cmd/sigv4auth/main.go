package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sigv4auth/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "sigv4auth",
	Short:   "AWS Signature Version 4 validation service",
	Long: `sigv4auth validates AWS Signature Version 4 signatures against a
store of access keys. It runs as an HTTP service for gateways that build the
string-to-sign themselves, and provides tooling to sign, validate and manage keys.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: SIGV4AUTH_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: sigv4auth.db, env: SIGV4AUTH_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("db-table", "", "access key table name (default: sigv4_access_keys, env: SIGV4AUTH_DATABASE_TABLE)")
	rootCmd.PersistentFlags().String("keys-file", "", "JSON or YAML file of access keys (env: SIGV4AUTH_KEYS_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: SIGV4AUTH_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
