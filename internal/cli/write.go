package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/textsync"
)

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	DocumentOptions
	Codec      string
	InputCodec string
}

// WriteResult reports a write.
type WriteResult struct {
	Path    string `json:"path"`
	Codec   string `json:"codec"`
	Written bool   `json:"written"`
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "write <text-path> <file>",
		Short: "Store a file's value in a text node",
		Long: `Decode a file and store its value in the text node at a path, encoded
with --codec. Missing maps along the path and the text itself are created.

The file is decoded with --input-codec, by default chosen from its
extension and otherwise equal to --codec. A file of "-" reads stdin.
Nothing is written when the text already holds an equal value.

Examples:
  docproxy write --db ./cache.db --doc notes settings ./settings.json
  docproxy write --db ./cache.db --doc notes app/config ./app.cue --codec yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(opts, args[0], args[1], cmd)
		},
	}

	names := strings.Join(codec.Names(), "|")
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Codec, "codec", codec.Default.Name(), "codec of the text ("+names+")")
	cmd.Flags().StringVar(&opts.InputCodec, "input-codec", "", "codec of the file ("+names+")")

	return cmd
}

func runWrite(opts *WriteOptions, path, file string, cmd *cobra.Command) error {
	c, err := codec.ByName(opts.Codec)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid codec", err)
	}
	in, err := inputCodec(opts.InputCodec, file, c)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input codec", err)
	}

	data, err := readInput(file, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	v, err := in.Decode(string(data))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to decode "+file, err)
	}

	return withSession(cmd, &opts.DocumentOptions, func(s *session, out *OutputFormatter) error {
		p, err := docpath.Parse(path)
		if err != nil {
			return out.Failure(ExitFailure, err)
		}
		// Entries inside a box must already exist.
		create := p.BoxIndex() < 0
		if err := docops.CheckRoot(s.doc, p, node.KindText, create); err != nil {
			return out.Failure(ExitFailure, err)
		}

		sync, err := textsync.AttachPath(s.doc, path, c, create)
		if sync == nil {
			return out.Failure(ExitFailure, err)
		}
		defer sync.Close()
		if err != nil {
			slog.Debug("existing text not decoded", "path", path, "err", err)
		}

		written, err := sync.Set(v)
		if err != nil {
			return out.Failure(ExitFailure, err)
		}

		result := WriteResult{Path: path, Codec: c.Name(), Written: written}
		if opts.Format == "json" {
			return out.Success(result)
		}
		if written {
			return out.Success(fmt.Sprintf("wrote %s (%s)", path, c.Name()))
		}
		return out.Success(fmt.Sprintf("%s unchanged", path))
	})
}

// inputCodec picks the codec for file: the named one, else the one matching
// its extension, else fallback.
func inputCodec(name, file string, fallback codec.Codec) (codec.Codec, error) {
	if name != "" {
		return codec.ByName(name)
	}
	if ext := strings.TrimPrefix(filepath.Ext(file), "."); ext != "" {
		if c, err := codec.ByName(ext); err == nil {
			return c, nil
		}
	}
	return fallback, nil
}

func readInput(file string, stdin io.Reader) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
