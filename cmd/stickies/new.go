package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var newContent string

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note and print its id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content, err := contentArg(newContent, cmd.InOrStdin())
		if err != nil {
			fatal("Failed to read content", err)
		}

		ctx := context.Background()
		store := openStore()
		id, err := store.CreateNote(ctx)
		if err != nil {
			fatal("Failed to create note", err)
		}
		if content != "" {
			if err := store.Save(ctx, id, content); err != nil {
				fatal("Failed to save note", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), id)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newContent, "content", "", "Initial content (\"-\" reads stdin)")
}
