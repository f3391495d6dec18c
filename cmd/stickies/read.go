package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stickies/pkg/core"
)

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Print the content of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := openStore().Load(context.Background(), core.NoteID(args[0]))
		if err != nil {
			fatal("Failed to read note", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
