package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/docops"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a path",
		Long: `Print the plain value of the node at a path.

Paths are slash separated. The first segment names a root; maps are
stepped into by key and sequences by index. The segment "@" enters a
box, whose remaining segments are file names.

Examples:
  docproxy get --db ./cache.db --doc notes config/servers/0
  docproxy get --db ./cache.db --doc notes files/@/readme --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session, out *OutputFormatter) error {
				v, err := docops.Get(s.doc, args[0])
				if err != nil {
					return out.Failure(ExitFailure, err)
				}
				return out.Value(v)
			})
		},
	}

	opts.addFlags(cmd)
	return cmd
}
