package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes, most recently edited first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		notes, err := openStore().ListAll(context.Background())
		if err != nil {
			fatal("Failed to list notes", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		id := color.New(color.FgCyan)
		when := color.New(color.FgHiBlack)
		for _, n := range notes {
			id.Fprint(out, n.ID)
			when.Fprintf(out, "  %s\n", n.UpdatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "  %s\n", oneLine(n.Preview))
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
