package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stickies/pkg/core"
)

var writeContent string

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write [id]",
	Short: "Replace the content of a note",
	Long: `Replace the content of a note, creating it if needed.
A running stickies picks the change up and refreshes its dashboard.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := contentArg(writeContent, cmd.InOrStdin())
		if err != nil {
			fatal("Failed to read content", err)
		}

		id := core.NoteID(args[0])
		if err := openStore().Save(context.Background(), id, content); err != nil {
			fatal("Failed to save note", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note '%s' saved.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeContent, "content", "-", "Note content (\"-\" reads stdin)")
}
