package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	endpoint   string
	apiKey     string
	profile    string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "fsgate-cli",
	Version:       version,
	Short:         "Client for the fsgate file gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `fsgate-cli - Client for the fsgate file gateway

Every path is relative to the server's data directory. A leading slash is
accepted and ignored.

Connection settings are resolved in this order, later sources winning:
  1. Profile from the config file (--profile, FSGATE_PROFILE or the default)
  2. Environment variables (FSGATE_ENDPOINT, FSGATE_API_KEY)
  3. Command line flags (--endpoint, --api-key)`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.fsgate/config.yaml, env: FSGATE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: FSGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", "", "API key (env: FSGATE_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: FSGATE_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file to use: flag, then env, then default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profile
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profErr := file.GetProfile(name)
			if profErr != nil && name != "" {
				return nil, profErr
			}
			if profErr == nil {
				configs = append(configs, clientcli.ConfigFromProfile(p))
			}
		case errors.Is(err, os.ErrNotExist) && cfgFile == "" && name == "":
			// No config file is fine unless one was asked for.
		default:
			return nil, err
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, APIKey: apiKey},
	)

	return clientcli.MergeConfig(configs...), nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client from the merged config. An API key is required
// for every server operation.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError prints err with the active formatter and returns an exitError
// so cobra does not print it a second time.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
