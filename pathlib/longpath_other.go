//go:build !windows

package pathlib

func Longpath(path string) string {
	return path
}

func Shortpath(path string) string {
	return path
}
