package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/equipviz/internal/core"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent uploads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		entries, err := store.List(ctx)
		if err != nil {
			return errors.New(core.FormatUserError(err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, accentStyle.Render("▸ RECENT UPLOADS"))
		fmt.Fprintln(out, renderHistory(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
