package archiver

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/shell"
)

// Tool describes one external archiver and how to drive it in pure
// store mode. Archives must come out uncompressed: the packing phase
// exists to turn thousands of small reads into one sequential write,
// not to spend CPU.
type Tool struct {
	Name       string
	Executable string
	Extension  string
	create     []string
	extract    []string
}

const (
	placeholderArchive  = `{archive}`
	placeholderFilelist = `{filelist}`
	placeholderDir      = `{dir}`
)

func sevenZip(executable string) *Tool {
	return &Tool{
		Name:       "7z",
		Executable: executable,
		Extension:  ".7z",
		create:     []string{"a", "-t7z", "-mx0", "-mmt=on", "-y", placeholderArchive, "@" + placeholderFilelist},
		extract:    []string{"x", "-y", "-mmt=on", "-o" + placeholderDir, placeholderArchive},
	}
}

func tarTool(executable string) *Tool {
	return &Tool{
		Name:       "tar",
		Executable: executable,
		Extension:  ".tar",
		create:     []string{"-cf", placeholderArchive, "-T", placeholderFilelist},
		extract:    []string{"-xf", placeholderArchive, "-C", placeholderDir},
	}
}

// Custom builds a tool from user-supplied command templates. The first
// token of the pack template names the executable; both templates use
// {archive}, {filelist} and {dir} placeholders.
func Custom(packTemplate, unpackTemplate, extension string) (*Tool, error) {
	create, err := shell.Split(packTemplate)
	if err != nil {
		return nil, fmt.Errorf("Bad pack command %q, reason: %v", packTemplate, err)
	}
	extract, err := shell.Split(unpackTemplate)
	if err != nil {
		return nil, fmt.Errorf("Bad unpack command %q, reason: %v", unpackTemplate, err)
	}
	if len(create) < 2 || len(extract) < 2 {
		return nil, fmt.Errorf("Archiver command templates need an executable and arguments.")
	}
	if create[0] != extract[0] {
		common.Debug("Pack and unpack use different executables: %q vs %q.", create[0], extract[0])
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Tool{
		Name:       "custom",
		Executable: create[0],
		Extension:  extension,
		create:     create[1:],
		extract:    extract[1:],
	}, nil
}

// Discover picks the archiver: user templates win, then the first of
// 7z, 7za, tar found on PATH.
func Discover(packTemplate, unpackTemplate, extension string) (*Tool, error) {
	if packTemplate != "" || unpackTemplate != "" {
		if packTemplate == "" || unpackTemplate == "" {
			return nil, fmt.Errorf("Custom archiver needs both pack and unpack commands.")
		}
		return Custom(packTemplate, unpackTemplate, extension)
	}
	for _, candidate := range []string{"7z", "7za"} {
		found, err := exec.LookPath(candidate)
		if err == nil {
			common.Debug("Using archiver %q.", found)
			return sevenZip(found), nil
		}
	}
	found, err := exec.LookPath("tar")
	if err == nil {
		common.Debug("Using archiver %q.", found)
		return tarTool(found), nil
	}
	return nil, fmt.Errorf("No usable archiver found on PATH; install 7-Zip or tar, or configure custom commands.")
}

func substitute(template []string, archive, filelist, dir string) []string {
	result := make([]string, 0, len(template))
	for _, part := range template {
		part = strings.ReplaceAll(part, placeholderArchive, archive)
		part = strings.ReplaceAll(part, placeholderFilelist, filelist)
		part = strings.ReplaceAll(part, placeholderDir, dir)
		result = append(result, part)
	}
	return result
}

func (it *Tool) CreateArgv(archive, filelist string) []string {
	return append([]string{it.Executable}, substitute(it.create, archive, filelist, "")...)
}

func (it *Tool) ExtractArgv(archive, targetDir string) []string {
	return append([]string{it.Executable}, substitute(it.extract, archive, "", targetDir)...)
}
