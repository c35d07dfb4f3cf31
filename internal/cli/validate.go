package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/ladder"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [routine.json]",
		Short: "Check a routine document for structural errors",
		Long: `Check a routine document for structural errors.

Validation parses every rung's text, verifying that branch brackets are
balanced and every instruction is well formed. Exit status is non-zero
when the document is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ladder.ReadFile(args[0])
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			rt, err := doc.Routine()
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			branches := 0
			for _, r := range rt.Rungs() {
				branches += r.BranchCount()
			}

			printSuccess("%s is valid", args[0])
			printDetail("routine: %s", doc.Name)
			printDetail("rungs: %d, branches: %d", rt.Len(), branches)
			printNewline()
			printNextStep("Render", fmt.Sprintf("ladderkit render %s", args[0]))
			return nil
		},
	}
}
