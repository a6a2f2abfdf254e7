// Package config parses document descriptors and the options used to open
// them.
//
// A descriptor is a single string:
//
//	server::document-name::token::path::tag1,tag2
//
// Only server and document name are required. Named aliases map short
// names to full descriptors and may be loaded from a YAML file; the
// DOCPROXY_CONFIG environment variable is consulted when no descriptor is
// given on the command line.
package config
