package main

import (
	"context"
	"os"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	lsDepth int
	lsDirs  bool
)

var lsCmd = &cobra.Command{
	Use:     "ls [path]",
	Aliases: []string{"list"},
	Short:   "List a directory on the server",
	Long: `List a directory on the server.

Without --dirs only files are shown, flattened from every level up to
--depth. With --dirs the listing is a tree of files and directories.

Examples:
  fsgate-cli ls
  fsgate-cli ls docs
  fsgate-cli ls --dirs --depth 3 projects/
  fsgate-cli ls --json docs | jq '.entries[].fullPath'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().IntVarP(&lsDepth, "depth", "d", 0, "levels to descend (server default: 1)")
	lsCmd.Flags().BoolVar(&lsDirs, "dirs", false, "include directories and nest their contents")
}

func runLs(_ *cobra.Command, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(context.Background(), clientcli.ListOptions{
		Path:        path,
		Depth:       lsDepth,
		IncludeDirs: lsDirs,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
