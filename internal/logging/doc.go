// Package logging provides structured logging for kmmctl.
//
// This package wraps a process-wide zap logger. It is silent until a level
// is chosen, either with Initialize or through the KMMCTL_LOG_LEVEL
// environment variable, so command output on stdout stays clean for piping.
//
// # Log Levels
//
//   - Debug: request/response traces from the transport (bodies redacted)
//   - Info: session events (login, cookie reuse, cookie persistence)
//   - Warn: recoverable problems (unreadable cookie file, options file)
//   - Error: failures reported to the user
//
// # Configuration
//
//	if err := logging.Initialize(logging.Options{Level: "debug", File: "kmmctl.log"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// With File set, output goes through a rotating lumberjack writer; otherwise
// records are written to stderr in console format.
package logging
