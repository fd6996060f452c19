package main

import (
	"context"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <path> [path...]",
	Aliases: []string{"delete"},
	Short:   "Delete files from the server",
	Long: `Delete one or more files from the server.

Directories cannot be deleted. Every path is attempted; the exit code is 1
if any of them failed.

Examples:
  fsgate-cli rm path/file.txt
  fsgate-cli rm old/a.txt old/b.txt old/c.txt
  fsgate-cli rm -q temp/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func runRm(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(context.Background(), clientcli.DeleteOptions{Paths: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
