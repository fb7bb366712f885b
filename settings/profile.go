package settings

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/shovelware/shovel/engine"
	"github.com/shovelware/shovel/fail"
)

// Profile is a reusable migration job description, kept in YAML so
// recurring jobs do not need a wall of flags.
type Profile struct {
	Source             string `yaml:"source"`
	Target             string `yaml:"target"`
	Workers            int    `yaml:"workers,omitempty"`
	ChunkSizeLimitMB   int    `yaml:"chunk_size_limit_mb,omitempty"`
	ChunkFileLimit     int    `yaml:"chunk_file_limit,omitempty"`
	SubprocessTimeoutS int    `yaml:"subprocess_timeout_s,omitempty"`
	CopyOnly           bool   `yaml:"copy_only,omitempty"`
	CreateSymlink      bool   `yaml:"create_symlink,omitempty"`
	ResumeSession      bool   `yaml:"resume_session,omitempty"`
	PackCommand        string `yaml:"pack_command,omitempty"`
	UnpackCommand      string `yaml:"unpack_command,omitempty"`
	ArchiveExt         string `yaml:"archive_ext,omitempty"`
}

// LoadProfile reads and parses one YAML job description.
func LoadProfile(filename string) (profile *Profile, err error) {
	defer fail.Around(&err)

	blob, err := os.ReadFile(filename)
	fail.On(err != nil, "Failed to read profile %q, reason: %v", filename, err)
	profile = &Profile{}
	err = yaml.UnmarshalStrict(blob, profile)
	fail.On(err != nil, "Failed to parse profile %q, reason: %v", filename, err)
	fail.On(profile.Source == "", "Profile %q is missing the source directory.", filename)
	fail.On(profile.Target == "", "Profile %q is missing the target directory.", filename)
	return profile, nil
}

// Apply folds profile values into engine options. Only filled fields
// land; the caller layers explicit flags on top afterwards.
func (it *Profile) Apply(options *engine.Options) {
	options.SourceRoot = it.Source
	options.TargetRoot = it.Target
	if it.Workers > 0 {
		options.WorkerCount = it.Workers
	}
	if it.ChunkSizeLimitMB > 0 {
		options.ChunkSizeLimitMB = it.ChunkSizeLimitMB
	}
	if it.ChunkFileLimit > 0 {
		options.ChunkFileLimit = it.ChunkFileLimit
	}
	if it.SubprocessTimeoutS > 0 {
		options.SubprocessTimeoutS = it.SubprocessTimeoutS
	}
	if it.CopyOnly {
		options.CopyOnly = true
	}
	if it.CreateSymlink {
		options.CreateSymlink = true
	}
	if it.ResumeSession {
		options.ResumeSession = true
	}
	if it.PackCommand != "" {
		options.PackCommand = it.PackCommand
	}
	if it.UnpackCommand != "" {
		options.UnpackCommand = it.UnpackCommand
	}
	if it.ArchiveExt != "" {
		options.ArchiveExt = it.ArchiveExt
	}
}
