package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger
)

// Levels in increasing severity. Loggers below the configured level write
// to io.Discard.
var Levels = []string{"debug", "info", "warn", "error"}

var (
	out   io.Writer = os.Stdout
	level           = "info"
)

func init() {
	apply()
}

func apply() {
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile

	rank := levelRank(level)
	writer := func(r int) io.Writer {
		if r < rank {
			return io.Discard
		}
		return out
	}

	Debug = log.New(writer(0), "DEBUG: ", logFlags)
	Info = log.New(writer(1), "INFO: ", logFlags)
	Warn = log.New(writer(2), "WARN: ", logFlags)
	Error = log.New(writer(3), "ERROR: ", logFlags)
}

func levelRank(l string) int {
	for i, name := range Levels {
		if name == l {
			return i
		}
	}
	return 1
}

// SetLevel silences every logger below l. Not safe to call while other
// goroutines are logging; call it once at startup.
func SetLevel(l string) error {
	l = strings.ToLower(strings.TrimSpace(l))
	for _, name := range Levels {
		if name == l {
			level = l
			apply()
			return nil
		}
	}
	return fmt.Errorf("unknown log level %q (expected one of %s)", l, strings.Join(Levels, ", "))
}

// SetOutput redirects all loggers, keeping the current level.
func SetOutput(w io.Writer) {
	out = w
	apply()
}
