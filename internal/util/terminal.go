package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
// Progress bars and colors are suppressed when it is not (cron runs).
func StderrIsTerminal() bool {
	return IsTerminal(os.Stderr.Fd())
}
