package logger

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger for the given level and format. Unknown levels fall back to debug,
// unknown formats to console.
func New(level, format string) *Logger {
	return newZapLogger(level, format)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return newNopLogger()
}
