// Package cmd implements the knit subcommands: parse, stream, repl,
// formats, and version.
//
// Commands read from and write to the [Console] stored in their context,
// which defaults to the process standard streams.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
