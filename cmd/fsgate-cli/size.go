package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size <path>",
	Short: "Print the size of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSize,
}

func runSize(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Size(context.Background(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatSize(os.Stdout, result)
}
