package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/fsgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "fsgate",
	Short:   "HTTP gateway over a sandboxed directory tree",
	Long: `fsgate serves one local directory over HTTP. Clients list, read,
write, copy and delete files below that directory using a shared API key
sent in the apikey header. Paths can never escape the data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log.Level, cfg.Env)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "env file to load, repeatable (default: ./.env when present)")
	rootCmd.PersistentFlags().String("storage-path", "", "data directory (default: ./data, env: FSGATE_STORAGE_PATH or DATA_DIR)")
	rootCmd.PersistentFlags().String("data-dir", "", "alias for --storage-path")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: FSGATE_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("journal", false, "record mutating operations (env: FSGATE_JOURNAL_ENABLED)")
	rootCmd.PersistentFlags().String("journal-type", "", "journal database: sqlite, postgres (default: sqlite)")
	rootCmd.PersistentFlags().String("journal-dsn", "", "journal connection string (default: fsgate.db)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
