// Package logging provides file-based structured logging with rotation.
//
// With --debug, JSON logs are written to ~/.docsearch/logs/docsearch.log
// and mirrored to stderr. The serve command writes to the file only,
// because stdout and stderr belong to the tool protocol.
//
// Without either, the process keeps the default slog logger.
package logging
