package httpmsg

import "github.com/rs/zerolog"

func init() {
	zerolog.CallerFieldName = "C"
	zerolog.MessageFieldName = "M"
	zerolog.LevelFieldName = "L"
	zerolog.ErrorFieldName = "E"
	zerolog.TimestampFieldName = "T"
	zerolog.ErrorStackFieldName = "S"
}

var logger = zerolog.Nop()

// SetLogger sets the logger used for the few places where the package
// swallows or falls back on an error instead of returning it.
//
// The default logger discards everything.
func SetLogger(l zerolog.Logger) {
	logger = l
}
