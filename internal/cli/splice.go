package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/value"
)

// SpliceOptions holds flags for the splice command.
type SpliceOptions struct {
	DocumentOptions
	Codec string
}

// NewSpliceCommand creates the splice command.
func NewSpliceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpliceOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "splice <path> <start> <delete-count> [value...]",
		Short: "Remove and insert sequence elements",
		Long: `Remove delete-count elements of the sequence at path starting at start,
insert the given values in their place, and print the removed elements.

start must lie within the sequence; delete-count is clamped to its end.
A single-segment path names a root sequence, created when missing.

Examples:
  docproxy splice --db ./cache.db --doc notes todo 0 1
  docproxy splice --db ./cache.db --doc notes todo 2 0 '"bread"' '{"qty":2}'`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid start", err)
			}
			deleteCount, err := strconv.Atoi(args[2])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid delete count", err)
			}
			c, err := codec.ByName(opts.Codec)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid codec", err)
			}

			items := make([]any, 0, len(args)-3)
			for _, raw := range args[3:] {
				v, err := c.Decode(raw)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid value", err)
				}
				items = append(items, v)
			}

			return withSession(cmd, &opts.DocumentOptions, func(s *session, out *OutputFormatter) error {
				seq, err := docops.Sequence(s.doc, args[0])
				if err != nil {
					return out.Failure(ExitFailure, err)
				}
				removed, err := seq.SpliceAt(start, deleteCount, items...)
				if err != nil {
					return out.Failure(ExitFailure, err)
				}
				return out.Value(value.Sequence(removed))
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Codec, "codec", "json", "codec of the values ("+strings.Join(codec.Names(), "|")+")")

	return cmd
}
