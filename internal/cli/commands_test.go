package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/config"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/store"
	"github.com/roach88/docproxy/internal/testutil"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func tempDB(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	return filepath.Join(t.TempDir(), "cache.db")
}

// decodeData parses a JSON response and returns its data field.
func decodeData(t *testing.T, out string) any {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	return resp.Data
}

func TestConfigGolden(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	out, _, err := runCLI(t, "config", "sync.example.com::notes::tok::/a/b::x,readonly")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "config_text", []byte(out))
}

func TestConfigAliasJSON(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	aliases := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(aliases, []byte("work: srv::doc::tok\n"), 0o644))

	out, _, err := runCLI(t, "--format", "json", "config", "#work", "--aliases", aliases)
	require.NoError(t, err)

	data := decodeData(t, out).(map[string]any)
	assert.Equal(t, "srv", data["server"])
	assert.Equal(t, "doc", data["document"])
	assert.Equal(t, "wss://srv", data["websocket_url"])
	assert.Equal(t, "docproxy::srv::doc", data["cache_key"])
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvVar, "env.example.com::shared")

	out, _, err := runCLI(t, "config", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "server:     env.example.com")
	assert.Contains(t, out, "cache key:  (disabled)")
}

func TestConfigMissing(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	_, stderr, err := runCLI(t, "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stderr, config.EnvVar)
}

func TestSetAndGet(t *testing.T) {
	db := tempDB(t)

	out, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "config/port", "8080")
	require.NoError(t, err)
	assert.Equal(t, "set config/port\n", out)

	out, _, err = runCLI(t, "get", "--db", db, "--doc", "d", "config")
	require.NoError(t, err)
	assert.Equal(t, "port: 8080\n", out)

	out, _, err = runCLI(t, "--format", "json", "get", "--db", db, "--doc", "d", "config/port")
	require.NoError(t, err)
	assert.Equal(t, float64(8080), decodeData(t, out))
}

func TestSetDelete(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "config", `{"a":1,"b":2}`)
	require.NoError(t, err)
	_, _, err = runCLI(t, "set", "--db", db, "--doc", "d", "config/a", "--delete")
	require.NoError(t, err)

	out, _, err := runCLI(t, "get", "--db", db, "--doc", "d", "config")
	require.NoError(t, err)
	assert.Equal(t, "b: 2\n", out)
}

func TestSetNeedsValueOrDelete(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "config/a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSetRejectsReservedKey(t *testing.T) {
	db := tempDB(t)

	_, stderr, err := runCLI(t, "set", "--db", db, "--doc", "d", "config/x", `{"client":1}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "RESERVED_KEY_COLLISION")
}

func TestGetMissingPath(t *testing.T) {
	db := tempDB(t)

	_, stderr, err := runCLI(t, "get", "--db", db, "--doc", "d", "nope/x")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stderr, "Error [NOT_FOUND]")
}

func TestGetWrongRootKind(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "notes", `"hello"`)
	require.NoError(t, err)

	out, _, err := runCLI(t, "get", "--db", db, "--doc", "d", "notes")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, stderr, err := runCLI(t, "get", "--db", db, "--doc", "d", "notes/x")
	require.Error(t, err)
	assert.Contains(t, stderr, "WRONG_KIND")
}

func TestSplice(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "todo", `["milk","eggs","jam"]`)
	require.NoError(t, err)

	out, _, err := runCLI(t, "splice", "--db", db, "--doc", "d", "todo", "0", "2", `"bread"`)
	require.NoError(t, err)
	assert.Equal(t, "- milk\n- eggs\n", out)

	out, _, err = runCLI(t, "--format", "json", "get", "--db", db, "--doc", "d", "todo")
	require.NoError(t, err)
	assert.Equal(t, []any{"bread", "jam"}, decodeData(t, out))
}

func TestSpliceOutOfRange(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--doc", "d", "todo", `["a"]`)
	require.NoError(t, err)

	_, stderr, err := runCLI(t, "splice", "--db", db, "--doc", "d", "todo", "5", "0")
	require.Error(t, err)
	assert.Contains(t, stderr, "OUT_OF_RANGE")
}

func TestWriteAndCat(t *testing.T) {
	db := tempDB(t)
	file := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"port": 1, "name": "api"}`), 0o644))

	out, _, err := runCLI(t, "write", "--db", db, "--doc", "d", "app/settings", file)
	require.NoError(t, err)
	assert.Equal(t, "wrote app/settings (yaml)\n", out)

	out, _, err = runCLI(t, "cat", "--db", db, "--doc", "d", "app/settings")
	require.NoError(t, err)
	assert.Equal(t, "name: api\nport: 1\n", out)

	out, _, err = runCLI(t, "--format", "json", "cat", "--db", db, "--doc", "d", "app/settings", "--codec", "yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "api", "port": float64(1)}, decodeData(t, out))

	// The same value again leaves the text alone.
	out, _, err = runCLI(t, "write", "--db", db, "--doc", "d", "app/settings", file)
	require.NoError(t, err)
	assert.Equal(t, "app/settings unchanged\n", out)
}

func TestWriteMalformedInput(t *testing.T) {
	db := tempDB(t)
	file := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"port":`), 0o644))

	_, _, err := runCLI(t, "write", "--db", db, "--doc", "d", "settings", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

// seedBox stores a document holding a box under files.
func seedBox(t *testing.T, db, name string) {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	doc := memdoc.New()
	defer doc.Close()
	local, err := store.Attach(context.Background(), doc, st, name)
	require.NoError(t, err)

	b := testutil.NewBox(doc, doc.GetMap("files"), testutil.NewSequentialIDGenerator("e"))
	b.Text("", "notes", "hello")
	docs := b.Dir("", "docs")
	b.Text(docs, "readme", "read me")

	require.NoError(t, local.Close())
}

func TestLsAndCatBox(t *testing.T) {
	db := tempDB(t)
	seedBox(t, db, "d")

	out, _, err := runCLI(t, "ls", "--db", db, "--doc", "d", "files/@")
	require.NoError(t, err)
	assert.Equal(t, "docs\nnotes\n", out)

	out, _, err = runCLI(t, "--format", "json", "ls", "--db", db, "--doc", "d", "files/@/docs")
	require.NoError(t, err)
	assert.Equal(t, []any{"readme"}, decodeData(t, out))

	out, _, err = runCLI(t, "cat", "--db", db, "--doc", "d", "files/@/docs/readme")
	require.NoError(t, err)
	assert.Equal(t, "read me", out)

	_, stderr, err := runCLI(t, "ls", "--db", db, "--doc", "d", "files/@/notes")
	require.Error(t, err)
	assert.Contains(t, stderr, "NOT_A_DIRECTORY")
}

func TestLogAndDocs(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "set", "--db", db, "--config", "srv::doc", "config/a", "1")
	require.NoError(t, err)
	_, _, err = runCLI(t, "set", "--db", db, "--config", "srv::doc", "config/b", "2")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--format", "json", "log", "--db", db, "--doc", "docproxy::srv::doc")
	require.NoError(t, err)
	commits := decodeData(t, out).([]any)
	require.Len(t, commits, 2)
	assert.Equal(t, float64(2), commits[1].(map[string]any)["seq"])

	out, _, err = runCLI(t, "log", "--db", db, "--config", "srv::doc")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")

	out, _, err = runCLI(t, "docs", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "docproxy::srv::doc\n", out)

	_, _, err = runCLI(t, "docs", "--db", db, "--delete", "docproxy::srv::doc")
	require.NoError(t, err)
	out, _, err = runCLI(t, "docs", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No documents cached.\n", out)
}

func TestDocumentRequired(t *testing.T) {
	db := tempDB(t)

	_, _, err := runCLI(t, "get", "--db", db, "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no document")
}
