package main

import (
	"github.com/Zuo-Peng/ai-session-dataset/internal/open"
	"github.com/spf13/cobra"
)

func openCmd(opts *rootOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open a JSONL file in $EDITOR at the line of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return open.OpenRecord(args[0], id)
		},
	}

	cmd.Flags().StringVar(&id, "uuid", "", "uuid of the record to jump to")

	return cmd
}
