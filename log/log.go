package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
)

// Verbose controls whether debug messages are being printed.
var Verbose bool

// IndentationLevel controls the amount of indentation of log messages.
var IndentationLevel = 0

// Spinner is shown on stderr while external tools are running.
var Spinner = func() *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = os.Stderr
	return s
}()

var errorOccured = false

// Success messages are logged at info level and tagged with this field.
const successField = "success"

var logger = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: &formatter{},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.DebugLevel,
}

// formatter renders entries the way the tool always printed them: indented,
// with a coloured severity prefix and no timestamps. The message carries its
// own trailing newline.
type formatter struct{}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	indent := 0
	if v, ok := entry.Data["indent"].(int); ok {
		indent = v
	}

	prefix := ""
	switch entry.Level {
	case logrus.DebugLevel:
		prefix = "\033[36mDebug: \033[0m"
	case logrus.WarnLevel:
		prefix = "\033[33mWarning: \033[0m"
	case logrus.ErrorLevel, logrus.FatalLevel:
		prefix = "\033[31mError: \033[0m"
	case logrus.InfoLevel:
		if _, ok := entry.Data[successField]; ok {
			prefix = "\033[32mSuccess: \033[0m"
		}
	}
	return []byte(strings.Repeat("  ", indent) + prefix + entry.Message), nil
}

func entry() *logrus.Entry {
	return logger.WithField("indent", IndentationLevel)
}

// SetOutput redirects all log output.
func SetOutput(out io.Writer) {
	logger.Out = out
}

// ErrorOccured reports whether any errors have occured.
func ErrorOccured() bool {
	return errorOccured
}

// Log prints an indented and formatted message to os.Stderr.
func Log(format string, a ...interface{}) {
	entry().Info(fmt.Sprintf(format, a...))
}

// Debug prints an indented and formatted debug message to os.Stderr if verbose output is selected.
func Debug(format string, a ...interface{}) {
	if Verbose {
		entry().Debug(fmt.Sprintf(format, a...))
	}
}

// Success prints an indented and formatted success message to os.Stderr.
func Success(format string, a ...interface{}) {
	entry().WithField(successField, true).Info(fmt.Sprintf(format, a...))
}

// Warning prints an indented and formatted warning to os.Stderr.
func Warning(format string, a ...interface{}) {
	entry().Warn(fmt.Sprintf(format, a...))
}

// Error prints an indented and formatted error message to os.Stderr.
func Error(format string, a ...interface{}) {
	errorOccured = true
	entry().Error(fmt.Sprintf(format, a...))
}

// Fatal prints an indented and formatted error message to os.Stderr and terminates the program.
func Fatal(format string, a ...interface{}) {
	Error(format, a...)
	fmt.Fprintf(logger.Out, "\033[31mA fatal error occured. Exiting...\033[0m\n")
	os.Exit(1)
}
