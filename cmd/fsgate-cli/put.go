package main

import (
	"context"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	putRecursive bool
	putOverwrite bool
)

var putCmd = &cobra.Command{
	Use:     "put <local-path> [remote-path]",
	Aliases: []string{"upload"},
	Short:   "Upload files to the server",
	Long: `Upload a file, or a directory with -r, to the server.

When remote-path is omitted it is derived from the local path. Existing
files are only replaced with --overwrite.

Examples:
  fsgate-cli put ./file.txt docs/file.txt
  fsgate-cli put -r ./images/ media/images/
  fsgate-cli put --overwrite ./config.json config.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().BoolVarP(&putRecursive, "recursive", "r", false, "upload directory recursively")
	putCmd.Flags().BoolVarP(&putOverwrite, "overwrite", "f", false, "replace existing files")
}

func runPut(_ *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := ""
	if len(args) > 1 {
		remotePath = args[1]
	}
	if remotePath == "" && !putRecursive {
		remotePath = clientcli.NormalizeLocalToRemotePath(localPath)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(context.Background(), clientcli.UploadOptions{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Overwrite:  putOverwrite,
		Recursive:  putRecursive,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
