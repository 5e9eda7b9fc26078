//go:build linux || darwin

package logger

import (
	"runtime"
	"syscall"
	"unsafe"
)

// get-terminal-attributes ioctl request; the number differs per kernel.
var ttyGetAttr = func() uintptr {
	if runtime.GOOS == "darwin" {
		return 0x40487413 // TIOCGETA
	}
	return 0x5401 // TCGETS
}()

// isTerminal reports whether fd refers to a terminal, which gates ANSI
// color output.
func isTerminal(fd uintptr) bool {
	var termios syscall.Termios
	_, _, errno := syscall.Syscall6(syscall.SYS_IOCTL, fd, ttyGetAttr,
		uintptr(unsafe.Pointer(&termios)), 0, 0, 0)
	return errno == 0
}
