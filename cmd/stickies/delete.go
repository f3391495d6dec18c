package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stickies/pkg/core"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note file from the data directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := core.NoteID(args[0])
		if err := openStore().Delete(context.Background(), id); err != nil {
			fatal("Failed to delete note", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note '%s' deleted.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
