package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/knit/format/ini"
	"github.com/ardnew/knit/log"
)

// resolve is a [kong.ConfigurationLoader] that reads INI configuration.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config")
//
// A flag is looked up first in the section named after the command that
// declares it, then among the global entries, where each flag may be
// written with hyphens, with underscores, or with its first hyphen
// replaced by a section header:
//
//	log-level = debug
//
//	[log]
//	pretty = false
//
//	[parse]
//	output = yaml
//	jobs   = 4
//
// Command-line flags override configuration values. A file that does not
// parse is reported and ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f, err := ini.Parse(src)
	if err != nil {
		log.Warn("ignoring invalid configuration", slog.Any("error", err))

		return config{}, nil
	}

	return config(f.Flatten()), nil
}

// config implements [kong.Resolver] over flattened INI entries keyed by
// "section.key".
type config map[string]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	for _, key := range keys(section(parent), flag.Name) {
		if value, ok := c[key]; ok {
			return value, nil
		}
	}

	// Not found: let Kong use defaults.
	return nil, nil
}

// section returns the name of the command declaring the flags of path, or
// the empty string for application flags.
func section(path *kong.Path) string {
	if path == nil {
		return ""
	}

	if n := path.Node(); n != nil && n.Type == kong.CommandNode {
		return n.Name
	}

	return ""
}

// keys returns the configuration keys that may hold the flag named name,
// in lookup order.
func keys(command, name string) []string {
	var out []string

	if command != "" {
		out = append(out, command+"."+name, command+"."+strings.ReplaceAll(name, "-", "_"))
	}

	out = append(out, name, strings.ReplaceAll(name, "-", "_"))

	if group, key, ok := strings.Cut(name, "-"); ok {
		out = append(out, group+"."+key, group+"."+strings.ReplaceAll(key, "-", "_"))
	}

	return out
}
