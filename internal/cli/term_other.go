//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package cli

import "io"

func terminalWidth(io.Writer) int {
	return 0
}
