// Package cmd implements the tempita subcommands.
//
// [Fill] renders a template to standard output or a file, binding variables
// given on the command line, read from YAML files, or taken from the
// process environment. [Parse] and [Lex] print the intermediate forms of a
// template, for debugging templates and delimiters.
//
// Commands read and write through the streams stored in their context by
// [WithIO], which default to the process standard streams.
package cmd

// Kong variable identifiers shared with package cli.
const (
	// CacheIdentifier names the variable holding the runtime cache directory.
	CacheIdentifier = "cache"
	// ConfigIdentifier names the variable holding the configuration file path.
	ConfigIdentifier = "config"
)
