// Package log is a small structured logging layer over [log/slog].
//
// A [Logger] is built with [Make] and functional options; [Logger.Wrap]
// derives a reconfigured copy. Records are written as text (colorized by
// default when the output is a terminal) or JSON:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("parsed", slog.String("format", "json"), slog.Int("bytes", n))
//
// Besides the four slog levels the package defines [LevelTrace], used for
// per-combinator parse tracing.
//
// Attribute values implementing [slog.LogValuer] are resolved and group
// values are flattened with dotted keys, so a parse failure logged as
//
//	logger.Warn("rejected", slog.Any("error", err))
//
// renders its offset, kind, and expectations as separate fields.
//
// The package-level functions ([Info], [Debug], and so on) log through a
// process-wide default logger, reconfigured with [Config].
package log
