package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/store"
)

// DocsOptions holds flags for the docs command.
type DocsOptions struct {
	*RootOptions
	Database string
	Delete   string
}

// NewDocsCommand creates the docs command.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List cached documents",
		Long: `List the documents held in the cache, or delete one with --delete.

Examples:
  docproxy docs --db ./cache.db
  docproxy docs --db ./cache.db --delete docproxy::sync.example.com::notes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite cache database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete this document and its log")

	return cmd
}

func runDocs(opts *DocsOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Delete != "" {
		if err := st.DeleteDocument(ctx, opts.Delete); err != nil {
			return out.Failure(ExitFailure, err)
		}
		return out.Success(fmt.Sprintf("deleted %s", opts.Delete))
	}

	names, err := st.Documents(ctx)
	if err != nil {
		return out.Failure(ExitFailure, err)
	}
	if opts.Format == "json" {
		return out.Success(names)
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents cached.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
