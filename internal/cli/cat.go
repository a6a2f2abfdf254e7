package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/textsync"
)

// CatOptions holds flags for the cat command.
type CatOptions struct {
	DocumentOptions
	Codec string
}

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "cat <text-path>",
		Short: "Print a text node",
		Long: `Print the content of the text node at a path.

With --codec the text is decoded and printed as a value instead.

Examples:
  docproxy cat --db ./cache.db --doc notes readme
  docproxy cat --db ./cache.db --doc notes files/@/settings.yaml --codec yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c codec.Codec
			if opts.Codec != "" {
				var err error
				if c, err = codec.ByName(opts.Codec); err != nil {
					return WrapExitError(ExitCommandError, "invalid codec", err)
				}
			}

			return withSession(cmd, &opts.DocumentOptions, func(s *session, out *OutputFormatter) error {
				text, err := docops.ResolveText(s.doc, args[0], false)
				if err != nil {
					return out.Failure(ExitFailure, err)
				}

				if c == nil {
					if opts.Format == "json" {
						return out.Success(text.String())
					}
					fmt.Fprint(cmd.OutOrStdout(), text.String())
					return nil
				}

				sync, err := textsync.Attach(s.doc, text, c)
				if err != nil {
					return out.Failure(ExitFailure, err)
				}
				defer sync.Close()
				return out.Value(sync.Value())
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Codec, "codec", "", "decode the text with this codec")

	return cmd
}
