//go:build !windows

package engine

func nativeRemoveArgv(target string) []string {
	return []string{"rm", "-rf", target}
}
