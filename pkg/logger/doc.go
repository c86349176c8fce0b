// Package logger builds the *slog.Logger instances used across connkit.
//
// New creates a logger configured by functional options: output format (text
// or json), minimum level, static attributes and ContextExtractor callbacks
// that pull values out of context.Context on every record. A session id
// stored with WithSessionID is extracted automatically.
//
// Attribute helpers in attr.go keep key names consistent between packages:
//
//	log := logger.New(logger.WithEnvironment("development", "connwatch"))
//	log.Info("signal processed",
//	    logger.Signal("reconnected"),
//	    logger.Status("connected"),
//	    logger.Attempt(2),
//	)
//
// Packages that accept an optional logger fall back to Discard, which drops
// every record.
package logger
