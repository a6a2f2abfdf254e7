package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/docops"
)

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ls <box-path>",
		Short: "List a box directory",
		Long: `List the entries of a directory inside a box.

The path must pass through the box marker "@". Segments after it name
directories; none lists the box root.

Examples:
  docproxy ls --db ./cache.db --doc notes files/@
  docproxy ls --db ./cache.db --doc notes files/@/docs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session, out *OutputFormatter) error {
				names, err := docops.ListBox(s.doc, args[0])
				if err != nil {
					return out.Failure(ExitFailure, err)
				}
				if opts.Format == "json" {
					return out.Success(names)
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	opts.addFlags(cmd)
	return cmd
}
