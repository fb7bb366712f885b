package cmd

import (
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/engine"
	"github.com/shovelware/shovel/pretty"
	"github.com/shovelware/shovel/settings"
)

var (
	migrateOptions engine.Options
	profileFile    string
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"move", "m"},
	Short:   "Migrate one directory tree onto another volume.",
	Long: `Migrate the source tree under the target root. The source's own
folder name is preserved: files land at <target>/<basename(source)>/.
Unless --copy-only is given, migrated source files are deleted and the
emptied source tree is removed at the end.`,
	Run: func(cmd *cobra.Command, args []string) {
		applyViperDefaults(cmd)
		if profileFile != "" {
			profile, err := settings.LoadProfile(profileFile)
			pretty.Guard(err == nil, 2, "%v", err)
			applyProfileUnderFlags(cmd, profile)
		}
		migrateOptions.Status = statusLine

		sut, err := engine.New(migrateOptions)
		pretty.Guard(err == nil, 2, "%v", err)

		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)
		go func() {
			_, ok := <-interrupts
			if ok {
				pretty.Warning("Interrupt received, stopping after in-flight work...")
				sut.Stop()
			}
		}()

		err = sut.Run()
		pretty.ProgressDone()
		if errors.Is(err, engine.ErrCancelled) {
			pretty.Exit(3, "Migration cancelled. Re-run with --resume to continue.")
		}
		pretty.Guard(err == nil, 4, "Migration failed: %v", err)
		pretty.Success("%sDone.", pretty.Rocket)
	},
}

func statusLine(message string, percent int) {
	if percent < 0 {
		common.Log("%s", message)
		return
	}
	pretty.Percent(percent, message)
}

// applyViperDefaults lets persisted user defaults fill the worker
// count, chunk limits, subprocess timeout and archiver settings when
// the command line left them untouched. Source, target and the boolean
// switches are not read from persisted defaults.
func applyViperDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("workers") && viper.IsSet("workers") {
		migrateOptions.WorkerCount = viper.GetInt("workers")
	}
	if !flags.Changed("chunk-size-limit") && viper.IsSet("chunk_size_limit_mb") {
		migrateOptions.ChunkSizeLimitMB = viper.GetInt("chunk_size_limit_mb")
	}
	if !flags.Changed("chunk-file-limit") && viper.IsSet("chunk_file_limit") {
		migrateOptions.ChunkFileLimit = viper.GetInt("chunk_file_limit")
	}
	if !flags.Changed("subprocess-timeout") && viper.IsSet("subprocess_timeout_s") {
		migrateOptions.SubprocessTimeoutS = viper.GetInt("subprocess_timeout_s")
	}
	if !flags.Changed("pack-command") && viper.IsSet("pack_command") {
		migrateOptions.PackCommand = viper.GetString("pack_command")
	}
	if !flags.Changed("unpack-command") && viper.IsSet("unpack_command") {
		migrateOptions.UnpackCommand = viper.GetString("unpack_command")
	}
	if !flags.Changed("archive-ext") && viper.IsSet("archive_ext") {
		migrateOptions.ArchiveExt = viper.GetString("archive_ext")
	}
}

// applyProfileUnderFlags layers values so that an explicit flag always
// beats the profile file, which beats persisted defaults.
func applyProfileUnderFlags(cmd *cobra.Command, profile *settings.Profile) {
	flags := cmd.Flags()
	saved := migrateOptions
	profile.Apply(&migrateOptions)
	if flags.Changed("source") {
		migrateOptions.SourceRoot = saved.SourceRoot
	}
	if flags.Changed("target") {
		migrateOptions.TargetRoot = saved.TargetRoot
	}
	if flags.Changed("workers") {
		migrateOptions.WorkerCount = saved.WorkerCount
	}
	if flags.Changed("chunk-size-limit") {
		migrateOptions.ChunkSizeLimitMB = saved.ChunkSizeLimitMB
	}
	if flags.Changed("chunk-file-limit") {
		migrateOptions.ChunkFileLimit = saved.ChunkFileLimit
	}
	if flags.Changed("subprocess-timeout") {
		migrateOptions.SubprocessTimeoutS = saved.SubprocessTimeoutS
	}
	if flags.Changed("copy-only") {
		migrateOptions.CopyOnly = saved.CopyOnly
	}
	if flags.Changed("symlink") {
		migrateOptions.CreateSymlink = saved.CreateSymlink
	}
	if flags.Changed("resume") {
		migrateOptions.ResumeSession = saved.ResumeSession
	}
	if flags.Changed("pack-command") {
		migrateOptions.PackCommand = saved.PackCommand
	}
	if flags.Changed("unpack-command") {
		migrateOptions.UnpackCommand = saved.UnpackCommand
	}
	if flags.Changed("archive-ext") {
		migrateOptions.ArchiveExt = saved.ArchiveExt
	}
}

func init() {
	flags := migrateCmd.Flags()
	flags.StringVarP(&migrateOptions.SourceRoot, "source", "s", "", "source directory to migrate")
	flags.StringVarP(&migrateOptions.TargetRoot, "target", "t", "", "target root; source folder name is created under it")
	flags.IntVarP(&migrateOptions.WorkerCount, "workers", "w", 0, "worker count for each of the two pools (default: per machine)")
	flags.IntVar(&migrateOptions.ChunkSizeLimitMB, "chunk-size-limit", 0, "pack size safety valve in MiB (default 64)")
	flags.IntVar(&migrateOptions.ChunkFileLimit, "chunk-file-limit", 0, "fallback cap on files per pack (default 5000)")
	flags.IntVar(&migrateOptions.SubprocessTimeoutS, "subprocess-timeout", 0, "archiver timeout per attempt in seconds (default 10)")
	flags.BoolVar(&migrateOptions.CopyOnly, "copy-only", false, "copy instead of move; source stays untouched")
	flags.BoolVar(&migrateOptions.CreateSymlink, "symlink", false, "replace source root with a directory symlink afterwards")
	flags.BoolVar(&migrateOptions.ResumeSession, "resume", false, "resume an interrupted migration from its session file")
	flags.BoolVar(&migrateOptions.DryRun, "dry-run", false, "plan and report without touching anything")
	flags.StringVar(&migrateOptions.PackCommand, "pack-command", "", "custom archiver pack template with {archive} and {filelist}")
	flags.StringVar(&migrateOptions.UnpackCommand, "unpack-command", "", "custom archiver unpack template with {archive} and {dir}")
	flags.StringVar(&migrateOptions.ArchiveExt, "archive-ext", "", "archive file extension for custom archivers")
	flags.StringVar(&profileFile, "profile", "", "YAML job profile; explicit flags override its values")
	rootCmd.AddCommand(migrateCmd)
}
