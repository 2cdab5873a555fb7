package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resumeforge/internal/document"
)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json|->",
		Short: "Check a document against the schema and structural rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			in, err := document.Decode(raw)
			if err != nil {
				return err
			}
			c.logger.Debug("document valid", "type", in.Type, "template", in.Template())
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s document\n", in.Type)
			return nil
		},
	}
}
