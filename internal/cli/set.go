package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/value"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	DocumentOptions
	Codec  string
	Delete bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "set <path> [value]",
		Short: "Assign a value at a path",
		Long: `Assign a value at a path in one transaction.

The value is decoded with --codec (JSON by default). The last path
segment is the key or index assigned in its parent. A path of a single
segment replaces a whole root: a table makes a map root, a sequence a
sequence root and a string a text root.

Examples:
  docproxy set --db ./cache.db --doc notes config/port 8080
  docproxy set --db ./cache.db --doc notes todo '["milk","eggs"]'
  docproxy set --db ./cache.db --doc notes config/port --delete`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Delete == (len(args) == 2) {
				return NewExitError(ExitCommandError, "pass either a value or --delete")
			}
			c, err := codec.ByName(opts.Codec)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid codec", err)
			}

			var v value.Value
			if !opts.Delete {
				if v, err = c.Decode(args[1]); err != nil {
					return WrapExitError(ExitCommandError, "invalid value", err)
				}
			}

			return withSession(cmd, &opts.DocumentOptions, func(s *session, out *OutputFormatter) error {
				if err := docops.Assign(s.doc, args[0], v); err != nil {
					return out.Failure(ExitFailure, err)
				}
				return out.Success(fmt.Sprintf("set %s", args[0]))
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Codec, "codec", "json", "codec of the value ("+strings.Join(codec.Names(), "|")+")")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "delete the key instead of assigning")

	return cmd
}
