package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/Zuo-Peng/ai-session-dataset/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func previewCmd(opts *rootOptions) *cobra.Command {
	var width int
	var noThinking, noTools, color bool

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a normalized record file as a readable transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := parse.ReadRecords(args[0])
			if err != nil {
				return err
			}

			// Colors and wrapping only when stdout is a terminal
			tty := false
			if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				tty = true
				if width == 0 {
					if w, _, err := term.GetSize(int(f.Fd())); err == nil {
						width = w
					}
				}
			}

			out := render.RenderTranscript(records, render.Options{
				Width:        width,
				Color:        color || tty,
				HideThinking: noThinking,
				HideTools:    noTools,
			})
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default: terminal width, no wrap when piped)")
	cmd.Flags().BoolVar(&noThinking, "no-thinking", false, "Hide reasoning blocks")
	cmd.Flags().BoolVar(&noTools, "no-tools", false, "Hide tool calls")
	cmd.Flags().BoolVar(&color, "color", false, "Force ANSI colors even when piped")

	return cmd
}
