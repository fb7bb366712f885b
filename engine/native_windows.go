//go:build windows

package engine

func nativeRemoveArgv(target string) []string {
	return []string{"cmd", "/C", "rd", "/S", "/Q", target}
}
