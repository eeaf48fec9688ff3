//go:build windows

package envpath

import "golang.org/x/sys/windows"

// Elevated reports whether the current process runs with administrative
// privilege. The Scoop installer needs to know: elevated runs must pass
// -RunAsAdmin or the installer refuses to proceed.
func Elevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
