package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/internal/factors"
)

func newPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List built-in preference presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range factors.Presets() {
				fmt.Fprintf(out, "%s\n  %s\n", p.Name, p.Description) //nolint:errcheck
				w := p.Weights
				fmt.Fprintf(out, "  quality=%.2f speed=%.2f control=%.2f consistency=%.2f simplicity=%.2f\n", //nolint:errcheck
					w.Quality, w.Speed, w.Control, w.Consistency, w.Simplicity)
				if len(p.StyleTags) > 0 {
					fmt.Fprintf(out, "  tags: %s\n", strings.Join(p.StyleTags, ", ")) //nolint:errcheck
				}
				fmt.Fprintln(out) //nolint:errcheck
			}
			return nil
		},
	}
	return cmd
}
