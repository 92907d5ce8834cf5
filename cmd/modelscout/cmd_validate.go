package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/internal/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog.yaml> [more files...]",
		Short: "Validate catalog files against the schema",
		Long: `Validate one or more catalog YAML files against the embedded JSON schema.

Exits non-zero if any file fails validation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCommand(cmd, args)
		},
		SilenceErrors: true,
	}
	return cmd
}

func runValidateCommand(cmd *cobra.Command, paths []string) error {
	out := cmd.OutOrStdout()
	var failed int
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if errs := validation.ValidateCatalogBytes(data); len(errs) > 0 {
			failed++
			fmt.Fprintf(out, "✗ %s\n", p) //nolint:errcheck
			for _, msg := range errs {
				fmt.Fprintf(out, "  %s\n", msg) //nolint:errcheck
			}
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", p) //nolint:errcheck
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(paths))
	}
	return nil
}
