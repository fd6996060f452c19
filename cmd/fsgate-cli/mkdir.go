package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory and any missing parents",
	Long: `Create a directory on the server along with any missing parents.

Fails with a conflict if the directory already exists.

Examples:
  fsgate-cli mkdir reports/2026/q3`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func runMkdir(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.CreateDir(context.Background(), args[0]); err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatCreateDir(os.Stdout, args[0])
}
