package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/config"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/provider"
	"github.com/roach88/docproxy/internal/store"
)

// syncTimeout bounds the wait for the cached document to load.
const syncTimeout = 10 * time.Second

// DocumentOptions holds the flags shared by commands that open a document.
type DocumentOptions struct {
	*RootOptions
	Database string
	Document string
	Config   string
	Aliases  string
}

func (o *DocumentOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.Database, "db", "", "path to SQLite cache database (required)")
	_ = cmd.MarkFlagRequired("db")
	f.StringVar(&o.Document, "doc", "", "cache key of the document (default: derived from --config)")
	f.StringVar(&o.Config, "config", "", "descriptor or alias (default: $"+config.EnvVar+")")
	f.StringVar(&o.Aliases, "aliases", "", "YAML file mapping alias names to descriptors")
}

// documentName returns --doc, or the cache key of the resolved descriptor.
func (o *DocumentOptions) documentName() (string, error) {
	if o.Document != "" {
		return o.Document, nil
	}

	res, err := resolveConfig(o.Config, o.Aliases)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "invalid config", err)
	}
	if !res.Present {
		return "", NewExitError(ExitCommandError,
			fmt.Sprintf("no document: pass --doc or --config, or set %s", config.EnvVar))
	}
	return config.DefaultSetupOptions().ResolveCacheKey(res.Config), nil
}

func resolveConfig(flag, aliasesPath string) (config.Result, error) {
	var aliases map[string]string
	if aliasesPath != "" {
		var err error
		if aliases, err = config.LoadAliases(aliasesPath); err != nil {
			return config.Result{}, err
		}
	}
	return config.Resolve(aliases, flag, config.FromEnv())
}

// session is one opened document backed by the cache.
type session struct {
	name  string
	st    *store.Store
	doc   *memdoc.Doc
	local *store.Local
}

func openSession(ctx context.Context, o *DocumentOptions) (*session, error) {
	name, err := o.documentName()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	doc := memdoc.New()
	local, err := store.Attach(ctx, doc, st, name)
	if err != nil {
		doc.Close()
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load document", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	if err := provider.WaitSynced(waitCtx, local); err != nil {
		s := &session{name: name, st: st, doc: doc, local: local}
		s.Close()
		return nil, WrapExitError(ExitCommandError, "document did not sync", err)
	}

	slog.Debug("document opened", "doc", name, "guid", doc.GUID(), "roots", len(doc.Roots()))
	return &session{name: name, st: st, doc: doc, local: local}, nil
}

// Close persists pending commits and releases the document and database.
func (s *session) Close() error {
	var errs []error
	if err := s.local.Close(); err != nil {
		errs = append(errs, err)
	}
	s.doc.Close()
	if err := s.st.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withSession opens the document, runs fn and closes the document.
func withSession(cmd *cobra.Command, o *DocumentOptions, fn func(s *session, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, o)
	if err != nil {
		return err
	}

	out := newFormatter(o.RootOptions, cmd)
	runErr := fn(s, out)
	if err := s.Close(); err != nil && runErr == nil {
		return WrapExitError(ExitCommandError, "failed to close document", err)
	}
	return runErr
}
