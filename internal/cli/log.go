package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/store"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show a document's commit log",
		Long: `Show the commits persisted for a document, oldest first.

Each row carries the log position, the document instance that made the
commit, its sequence number within that instance, the number of edits
and the hash of the state it produced.

Examples:
  docproxy log --db ./cache.db --doc notes
  docproxy log --db ./cache.db --config '#work' --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runLog(opts *DocumentOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	name, err := opts.documentName()
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	commits, err := st.Commits(ctx, name)
	if err != nil {
		return out.Failure(ExitFailure, err)
	}

	if opts.Format == "json" {
		return out.Success(commits)
	}
	if len(commits) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No commits for %s\n", name)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSESSION\tDOC SEQ\tCHANGES\tHASH")
	for _, c := range commits {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", c.Seq, c.Session, c.DocSeq, c.Changes, shortHash(c.Hash))
	}
	return w.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
