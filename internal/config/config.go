package config

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits descriptor fields.
const Separator = "::"

// TagSeparator splits the tags field.
const TagSeparator = ","

// ErrInvalidDescriptor is returned for descriptors without a server and a
// document name.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Config identifies one shared document on one sync server.
type Config struct {
	Server  string
	DocName string
	Token   string
	// Path addresses a node inside the document, without a leading slash.
	Path string
	Tags []string
}

// Parse reads a descriptor of the form
//
//	server::document-name[::token[::path[::tag1,tag2]]]
//
// Server and document name are required. Tags are trimmed and empty tags
// dropped.
func Parse(s string) (Config, error) {
	parts := strings.Split(s, Separator)
	if len(parts) < 2 {
		return Config{}, fmt.Errorf("%w: %q needs at least server%sdocument", ErrInvalidDescriptor, s, Separator)
	}
	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	cfg := Config{
		Server:  field(0),
		DocName: field(1),
		Token:   field(2),
		Path:    strings.TrimPrefix(field(3), "/"),
		Tags:    splitTags(field(4)),
	}
	if cfg.Server == "" || cfg.DocName == "" {
		return Config{}, fmt.Errorf("%w: %q has an empty server or document", ErrInvalidDescriptor, s)
	}
	return cfg, nil
}

func splitTags(s string) []string {
	tags := []string{}
	if s == "" {
		return tags
	}
	for _, t := range strings.Split(s, TagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// String formats c as a descriptor. Trailing empty fields are omitted.
func (c Config) String() string {
	parts := []string{c.Server, c.DocName, c.Token, c.Path, strings.Join(c.Tags, TagSeparator)}
	for len(parts) > 2 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, Separator)
}

// HasTag reports whether c carries tag.
func (c Config) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReadOnly reports whether c carries the "readonly" tag.
func (c Config) ReadOnly() bool {
	return c.HasTag("readonly")
}

// WebsocketURL returns the server address with a wss:// scheme added when
// the server names none.
func (c Config) WebsocketURL() string {
	if strings.Contains(c.Server, "://") {
		return c.Server
	}
	return "wss://" + c.Server
}

// Room returns the room name sent to the sync server: the document name
// with the token as a query parameter.
func (c Config) Room() string {
	return c.DocName + "?t=" + c.Token
}
