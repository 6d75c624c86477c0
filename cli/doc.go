// Package cli contains the command line interface for knit.
//
// # Usage
//
//	knit [flags] [parse] [source ...]
//	knit stream [--format NAME] [source]
//	knit repl [--format NAME]
//	knit formats
//	knit version
//
// Parse is the default command: "knit data.json" parses data.json with the
// format registered for its extension.
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/knit/config.json and from the
// INI file $XDG_CONFIG_HOME/knit/config, which is parsed with the knit INI
// grammar:
//
//	log-level = debug
//
//	[parse]
//	output = yaml
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o knit .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/knit/pprof)
package cli
