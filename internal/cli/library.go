package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/ladder"
)

// libraryCommand creates the library command group.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the saved routine library",
		Long: `Manage the saved routine library.

Routines are stored in local files by default. Set LADDERKIT_MONGO_URI
to store them in MongoDB instead.`,
	}

	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryPutCommand())
	cmd.AddCommand(c.libraryGetCommand())
	cmd.AddCommand(c.libraryDeleteCommand())

	return cmd
}

func (c *CLI) libraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			summaries, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("Library is empty")
				return nil
			}
			for _, s := range summaries {
				printKeyValue(s.ID[:min(len(s.ID), 12)], fmt.Sprintf("%s (%d rungs)", s.Name, s.Rungs))
			}
			return nil
		},
	}
}

func (c *CLI) libraryPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put [routine.json]",
		Short: "Save a routine document to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			doc, err := ladder.ReadFile(args[0])
			if err != nil {
				return err
			}

			store, err := newLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			id, err := store.Put(ctx, doc)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Saved %s", doc.Name))
			printDetail("id: %s", id)
			return nil
		},
	}
}

func (c *CLI) libraryGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch a routine from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			doc, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				return ladder.WriteJSON(doc, cmd.OutOrStdout())
			}
			if err := ladder.WriteFile(doc, output); err != nil {
				return err
			}
			printSuccess("Fetched %s", doc.Name)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) libraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a routine from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
