package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// Init configures the global zerolog logger. Console output with colors when
// attached to a terminal, plain text otherwise. Debug level in development,
// Info everywhere else.
func Init(env string) {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	paint := func(color, s string) string {
		if !useColor {
			return s
		}
		return color + s + colorReset
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "02.01.2006 15:04:05",
		NoColor:    !useColor,
		FormatLevel: func(i interface{}) string {
			level := strings.ToUpper(fmt.Sprintf("%s", i))
			switch level {
			case "DEBUG":
				return paint(colorCyan, "DBG")
			case "INFO":
				return paint(colorBlue, "INF")
			case "WARN":
				return paint(colorYellow, "WRN")
			case "ERROR", "FATAL":
				return paint(colorRed, level[:3])
			default:
				return level
			}
		},
		FormatFieldName: func(i interface{}) string {
			return paint(colorCyan, fmt.Sprintf("%s", i)) + "="
		},
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("env", env).
		Logger()

	switch env {
	case "development":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
