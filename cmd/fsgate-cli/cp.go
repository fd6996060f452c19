package main

import (
	"context"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var cpOverwrite bool

var cpCmd = &cobra.Command{
	Use:   "cp <source> <destination>",
	Short: "Copy a file on the server",
	Long: `Copy a file to a new path on the server.

Missing parent directories of the destination are created. An existing
destination is only replaced with --overwrite.

Examples:
  fsgate-cli cp docs/a.txt archive/a.txt
  fsgate-cli cp --overwrite config.json config.json.bak`,
	Args: cobra.ExactArgs(2),
	RunE: runCp,
}

func init() {
	cpCmd.Flags().BoolVarP(&cpOverwrite, "overwrite", "f", false, "replace an existing destination")
}

func runCp(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.CopyOptions{
		Source:      args[0],
		Destination: args[1],
		Overwrite:   cpOverwrite,
	}
	if err := client.Copy(context.Background(), opts); err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatCopy(os.Stdout, opts)
}
