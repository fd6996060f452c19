package main

import (
	"context"
	"io"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	getOutput string
	getStdout bool
)

var getCmd = &cobra.Command{
	Use:     "get <remote-path> [local-path]",
	Aliases: []string{"download"},
	Short:   "Download a file from the server",
	Long: `Download a file from the server.

Without a local path the file is written to the current directory under
its base name.

Examples:
  fsgate-cli get docs/file.txt
  fsgate-cli get docs/file.txt ./local-file.txt
  fsgate-cli get --stdout config.json | jq .
  fsgate-cli get -o ./output.txt docs/file.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file path")
	getCmd.Flags().BoolVar(&getStdout, "stdout", false, "write to stdout")
}

func runGet(_ *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if getOutput != "" {
		localPath = getOutput
	}
	if getStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
		RemotePath: args[0],
		LocalPath:  localPath,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the file content.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
