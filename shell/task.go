package shell

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/google/shlex"
)

type Task struct {
	environment []string
	directory   string
	executable  string
	args        []string
}

func New(environment []string, directory string, task ...string) *Task {
	executable, args := task[0], task[1:]
	return &Task{
		environment: environment,
		directory:   directory,
		executable:  executable,
		args:        args,
	}
}

// Split breaks one command line into argv parts, honoring quoting.
func Split(command string) ([]string, error) {
	return shlex.Split(command)
}

func (it *Task) Command() string {
	return fmt.Sprintf("%s %v", it.executable, it.args)
}

func (it *Task) command(stdout, stderr io.Writer) *exec.Cmd {
	command := exec.Command(it.executable, it.args...)
	command.Dir = it.directory
	command.Stdout = stdout
	command.Stderr = stderr
	command.Stdin = nil
	if it.environment != nil {
		command.Env = it.environment
	}
	command.SysProcAttr = hiddenConsole()
	return command
}
