//go:build !windows

package envpath

import "os"

// Elevated reports whether the process runs as root. The non-Windows
// equivalent of token elevation, used when developing off the target OS.
func Elevated() bool {
	return os.Geteuid() == 0
}
