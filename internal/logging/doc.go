// Package logging provides the leveled, printf-style logger shared by the
// derivative pipeline, the HTTP service and the CLI.
//
// Levels, from most to least verbose:
//   - DEBUG: pipeline stage transitions (decode, probe, seek, capture, encode)
//   - INFO: service lifecycle and configuration
//   - WARN: recoverable problems (cleanup failures, fallbacks)
//   - ERROR: failed requests and startup errors
//
// The initial level comes from the LOG_LEVEL environment variable (DEBUG=1
// forces debug). SetLevel overrides it, which is how a config file value
// takes effect. Level tags are coloured when stderr is a terminal.
package logging
