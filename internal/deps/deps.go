// Package deps reports whether external helper programs are installed.
package deps

import (
	"os/exec"
	"strings"
)

// NotifySend is the desktop notification helper used by watch mode
const NotifySend = "notify-send"

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// Check looks up name on PATH and, when versionFlag is not empty, records the
// first line the program prints for it.
func Check(name, versionFlag string) Status {
	path, err := lookPath(name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if versionFlag == "" {
		return status
	}

	output, err := exec.Command(path, versionFlag).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// CheckNotifySend checks if notify-send is installed
func CheckNotifySend() Status {
	return Check(NotifySend, "--version")
}
