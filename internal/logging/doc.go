// Package logging constructs the slog loggers used across paneltrim.
//
// Console output goes through a tinted handler for interactive use; the json
// format produces machine-readable records for log shipping. Attr helpers
// mirror slog's constructors so call sites stay terse, and NewComponentLogger
// standardizes the component attribute every subsystem logs under.
package logging
