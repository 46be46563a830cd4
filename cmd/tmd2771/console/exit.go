package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// Fail is an exit carrying a single "Error: ..." line.
func Fail(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf("%s: %s", Red("Error"), fmt.Sprintf(msg, args...)), code)
}
