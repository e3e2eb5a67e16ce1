// Package logging configures the process-wide logrus logger: a symbol-tagged
// console formatter (coloured only when stderr is a terminal) and an optional
// plain-text mirror file next to the executable.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// DefaultLogFileName is the mirror file written beside the executable when
// file logging is enabled.
const DefaultLogFileName = "window_mod.log"

// SymbolFormatter renders entries as [TIME] [SYMBOL] MESSAGE with a
// per-level symbol, optionally coloured.
type SymbolFormatter struct {
	Colors bool
}

func (f *SymbolFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	// ANSI color codes
	const (
		cyan   = "\033[36m"
		yellow = "\033[33m"
		red    = "\033[91m"
		gray   = "\033[38;5;245m"
		reset  = "\033[0m"
		bold   = "\033[1m"
		dim    = "\033[2m"
	)

	timestamp := entry.Time.Format("2006-01-02 15:04:05")

	var levelColor string
	var levelSymbol string

	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = red
		levelSymbol = "[!]"
	case logrus.WarnLevel:
		levelColor = yellow
		levelSymbol = "[~]"
	case logrus.InfoLevel:
		levelColor = cyan
		levelSymbol = "[+]"
	default:
		levelColor = gray
		levelSymbol = "[*]"
	}

	fields := ""
	for k, v := range entry.Data {
		fields += fmt.Sprintf(" %s=%v", k, v)
	}

	if !f.Colors {
		return []byte(fmt.Sprintf("[%s] %s %s%s\n",
			timestamp, levelSymbol, entry.Message, fields)), nil
	}

	// Format: [TIME] [SYMBOL] MESSAGE fields
	output := fmt.Sprintf("%s[%s]%s %s%s%s %s%s%s%s\n",
		dim+gray, timestamp, reset,
		bold+levelColor, levelSymbol, reset,
		levelColor, entry.Message, reset,
		dim+fields+reset,
	)
	return []byte(output), nil
}

// fileHook mirrors every entry into a writer using the plain (uncoloured)
// formatter, independent of what the console gets.
type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

// Setup configures the standard logrus logger. verbose lowers the level to
// Debug; logFile, when non-empty, receives an uncoloured copy of every entry.
func Setup(verbose bool, logFile string) error {
	logrus.SetFormatter(&SymbolFormatter{
		Colors: term.IsTerminal(int(os.Stderr.Fd())),
	})
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", logFile, err)
		}
		logrus.AddHook(&fileHook{w: f, formatter: &SymbolFormatter{Colors: false}})
	}
	return nil
}
