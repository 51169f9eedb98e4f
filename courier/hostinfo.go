package courier

import (
	"os"
	"path/filepath"
	"runtime"
)

// NewHostInfo captures the identity of the current process. Call it once
// at startup and pass the value down; the engine never caches it globally.
func NewHostInfo() HostInfo {
	hostname, _ := os.Hostname()
	return HostInfo{
		MachineName:    hostname,
		ProcessName:    filepath.Base(os.Args[0]),
		ProcessID:      os.Getpid(),
		RuntimeVersion: runtime.Version(),
	}
}
