package main

import (
	"fmt"
	"path/filepath"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/Zuo-Peng/ai-session-dataset/internal/tui"
	"github.com/spf13/cobra"
)

func viewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>",
		Short: "Browse a normalized record file interactively",
		Long:  `Opens a TUI with the records on the left and the selected record on the right. Enter copies the command that resumes the record's session.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := parse.ReadRecords(args[0])
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s (%d records)", filepath.Base(args[0]), len(records))
			return tui.Run(title, records, cmd.OutOrStdout())
		},
	}
}
