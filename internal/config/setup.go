package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding a descriptor or alias.
const EnvVar = "DOCPROXY_CONFIG"

// DefaultAlias is expanded when the input is empty.
const DefaultAlias = "default"

// Expand strips a leading "#" or "#/" from input and replaces it with the
// descriptor it aliases, if any. An empty input expands the default alias.
func Expand(input string, aliases map[string]string) string {
	s := input
	if strings.HasPrefix(s, "#") {
		s = strings.TrimPrefix(s[1:], "/")
	}
	if s == "" {
		s = DefaultAlias
	}
	if d, ok := aliases[s]; ok {
		return d
	}
	if s == DefaultAlias {
		return ""
	}
	return s
}

// Result is the outcome of Resolve. Present is false when no source held a
// descriptor.
type Result struct {
	Config  Config
	Present bool
	// Raw is the descriptor that was parsed.
	Raw string
}

// Resolve expands and parses the first non-empty source. Sources are tried
// in order, typically a flag value and then the environment.
func Resolve(aliases map[string]string, sources ...string) (Result, error) {
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		raw := Expand(src, aliases)
		cfg, err := Parse(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Config: cfg, Present: true, Raw: raw}, nil
	}

	if raw := Expand("", aliases); raw != "" {
		cfg, err := Parse(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Config: cfg, Present: true, Raw: raw}, nil
	}
	return Result{}, nil
}

// FromEnv returns the value of EnvVar.
func FromEnv() string {
	return os.Getenv(EnvVar)
}

// LoadAliases reads a YAML mapping of alias name to descriptor. Every
// descriptor must parse.
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}

	aliases := map[string]string{}
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse aliases %s: %w", path, err)
	}
	for name, d := range aliases {
		if _, err := Parse(d); err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
	}
	return aliases, nil
}

// SetupOptions controls how a document is opened.
type SetupOptions struct {
	// Websocket connects to the sync server.
	Websocket bool
	// LocalCache keeps an offline copy.
	LocalCache bool
	// CacheKey names the offline copy; empty derives it from the config.
	CacheKey string
	// AwaitSync waits for the offline copy to load before returning.
	AwaitSync bool
}

// DefaultSetupOptions enables everything with a derived cache key.
func DefaultSetupOptions() SetupOptions {
	return SetupOptions{
		Websocket:  true,
		LocalCache: true,
		AwaitSync:  true,
	}
}

// CacheKeyFor derives the offline cache key for cfg.
func CacheKeyFor(cfg Config) string {
	return strings.Join([]string{"docproxy", cfg.Server, cfg.DocName}, Separator)
}

// ResolveCacheKey returns the cache key to use, or "" when the local cache
// is disabled, even if a key was given.
func (o SetupOptions) ResolveCacheKey(cfg Config) string {
	if !o.LocalCache {
		return ""
	}
	if o.CacheKey != "" {
		return o.CacheKey
	}
	return CacheKeyFor(cfg)
}
