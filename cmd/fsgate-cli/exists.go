package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists <file|dir> <path>",
	Short: "Check whether a file or directory exists",
	Long: `Check whether a file or directory exists on the server.

The exit code is 0 when the path exists and 1 when it does not, so the
command can be used in shell conditionals.

Examples:
  fsgate-cli exists file docs/readme.md
  fsgate-cli -q exists dir backups && echo present`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"file", "dir"},
	RunE:      runExists,
}

func runExists(_ *cobra.Command, args []string) error {
	kind, path := args[0], args[1]

	client, err := getClient()
	if err != nil {
		return err
	}

	var exists bool
	switch kind {
	case "file":
		exists, err = client.FileExists(context.Background(), path)
	case "dir":
		exists, err = client.DirExists(context.Background(), path)
	default:
		return fmt.Errorf("unknown kind %q: expected file or dir", kind)
	}
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatExists(os.Stdout, &clientcli.ExistsResult{
		Path:   path,
		Kind:   kind,
		Exists: exists,
	}); err != nil {
		return err
	}

	if !exists {
		return &exitError{code: 1}
	}
	return nil
}
