//go:build !windows

package pathlib

import "os"

func clearReadonly(target string) {
	stat, err := os.Stat(target)
	if err != nil {
		return
	}
	if stat.Mode().Perm()&0o200 == 0 {
		os.Chmod(target, stat.Mode().Perm()|0o200)
	}
}
