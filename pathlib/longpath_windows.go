//go:build windows

package pathlib

import (
	"path/filepath"
	"strings"
)

const longpathSentinel = `\\?\`

// Longpath absolutizes the given path and prepends the extended-length
// sentinel, so that syscalls work past the legacy 260 character limit.
// UNC shares get the \\?\UNC\ form, already-prefixed paths pass through.
func Longpath(path string) string {
	if strings.HasPrefix(path, longpathSentinel) {
		return path
	}
	full, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(full, `\\`) {
		return longpathSentinel + `UNC` + full[1:]
	}
	return longpathSentinel + full
}

// Shortpath gives the plain form for child processes that do not
// tolerate the extended-length sentinel.
func Shortpath(path string) string {
	if strings.HasPrefix(path, longpathSentinel+`UNC`) {
		return `\` + path[len(longpathSentinel)+3:]
	}
	return strings.TrimPrefix(path, longpathSentinel)
}
