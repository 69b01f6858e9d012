//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package term

// Without termios the stream is treated as a pipe. Pass -i to force the
// interactive shell.
func isTerminal(fd int) bool {
	return false
}
