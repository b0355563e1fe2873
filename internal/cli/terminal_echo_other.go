//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"fmt"
	"os"
	"runtime"
)

func disableEcho(*os.File) (func(), error) {
	return nil, fmt.Errorf("no echo control on %s", runtime.GOOS)
}
