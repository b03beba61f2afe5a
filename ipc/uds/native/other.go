//go:build !linux && !darwin

package native

import (
	"fmt"
	"runtime"
)

// Load returns the Provider for this platform. Only Linux and Darwin are supported.
func Load() (Provider, error) {
	return nil, fmt.Errorf("unix domain sockets are not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}
