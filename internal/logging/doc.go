// Package logging provides the structured logging facade used by the engine,
// the CLI and the TUI. The zerolog backend is hidden behind [Logger] so that
// packages only depend on the small interface and the [Field] helpers.
package logging
