package console

import (
	"fmt"
	"io"
	"os"
)

var writer io.Writer
var errWriter io.Writer

func init() {
	writer = os.Stdout
	errWriter = os.Stderr
}

func SetOutput(w, errw io.Writer) {
	writer = w
	errWriter = errw
}

func Output() io.Writer {
	return writer
}

func Error(msg string) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("Error"), msg)
}

func Errorf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("Error"), fmt.Sprintf(msg, args...))
}

// Eprint writes msg as a line of its own to the error output.
func Eprint(msg string) {
	_, _ = fmt.Fprintln(errWriter, msg)
}

func Info(msg string) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", White("..."), msg)
}

func Print(msg string) {
	_, _ = fmt.Fprintln(writer, msg)
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, msg, args...)
}
