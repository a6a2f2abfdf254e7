package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/config"
)

// ConfigOptions holds flags for the config command.
type ConfigOptions struct {
	*RootOptions
	Aliases  string
	CacheKey string
	NoCache  bool
}

// ConfigResult is the parsed form of a descriptor.
type ConfigResult struct {
	Descriptor   string   `json:"descriptor"`
	Server       string   `json:"server"`
	Document     string   `json:"document"`
	Token        string   `json:"token,omitempty"`
	Path         string   `json:"path,omitempty"`
	Tags         []string `json:"tags"`
	ReadOnly     bool     `json:"read_only"`
	WebsocketURL string   `json:"websocket_url"`
	Room         string   `json:"room"`
	CacheKey     string   `json:"cache_key,omitempty"`
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "config [descriptor]",
		Short: "Parse a document descriptor",
		Long: `Parse a document descriptor and show what it addresses.

A descriptor has the form server::document-name::token[::path][::tags].
It may also name an alias from --aliases, with an optional leading "#".
Without an argument the descriptor is read from $` + config.EnvVar + `,
then from the "default" alias.

Examples:
  docproxy config sync.example.com::notes::s3cret
  docproxy config '#work' --aliases ~/.docproxy.yaml
  docproxy config --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return runConfig(opts, input, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Aliases, "aliases", "", "YAML file mapping alias names to descriptors")
	cmd.Flags().StringVar(&opts.CacheKey, "cache-key", "", "override the derived cache key")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the local cache")

	return cmd
}

func runConfig(opts *ConfigOptions, input string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	res, err := resolveConfig(input, opts.Aliases)
	if err != nil {
		return out.Failure(ExitCommandError, err)
	}
	if !res.Present {
		return out.Failure(ExitCommandError,
			fmt.Errorf("no descriptor given and %s is not set", config.EnvVar))
	}

	setup := config.DefaultSetupOptions()
	setup.CacheKey = opts.CacheKey
	setup.LocalCache = !opts.NoCache

	cfg := res.Config
	result := ConfigResult{
		Descriptor:   cfg.String(),
		Server:       cfg.Server,
		Document:     cfg.DocName,
		Token:        cfg.Token,
		Path:         cfg.Path,
		Tags:         cfg.Tags,
		ReadOnly:     cfg.ReadOnly(),
		WebsocketURL: cfg.WebsocketURL(),
		Room:         cfg.Room(),
		CacheKey:     setup.ResolveCacheKey(cfg),
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	writeConfigText(cmd.OutOrStdout(), result)
	return nil
}

func writeConfigText(w io.Writer, r ConfigResult) {
	fmt.Fprintf(w, "descriptor: %s\n", r.Descriptor)
	fmt.Fprintf(w, "server:     %s\n", r.Server)
	fmt.Fprintf(w, "document:   %s\n", r.Document)
	if r.Path != "" {
		fmt.Fprintf(w, "path:       %s\n", r.Path)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "tags:       %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(w, "read-only:  %t\n", r.ReadOnly)
	fmt.Fprintf(w, "websocket:  %s\n", r.WebsocketURL)
	fmt.Fprintf(w, "room:       %s\n", r.Room)
	if r.CacheKey != "" {
		fmt.Fprintf(w, "cache key:  %s\n", r.CacheKey)
	} else {
		fmt.Fprintln(w, "cache key:  (disabled)")
	}
}
