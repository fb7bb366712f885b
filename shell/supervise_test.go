package shell_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/shovelware/shovel/hamlet"
	"github.com/shovelware/shovel/shell"
)

func needsCoreutils(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test drives unix coreutils children")
	}
}

func TestSplitHonorsQuoting(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	parts, err := shell.Split(`tar -cf "some archive.tar" -T list.txt`)
	must_be.Nil(err)
	must_be.Equal(5, len(parts))
	must_be.Equal("some archive.tar", parts[2])
}

func TestTimedCompletesFastChild(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	task := shell.New(nil, ".", "true")
	must_be.Nil(task.Timed(5 * time.Second))
	must_be.Equal(0, shell.ActiveChildren())
}

func TestTimedReportsNonZeroExitCode(t *testing.T) {
	needsCoreutils(t)
	must_be, wont_be := hamlet.Specifications(t)

	shell.Reset()
	task := shell.New(nil, ".", "false")
	err := task.Timed(5 * time.Second)
	wont_be.Nil(err)

	var exit *shell.ExitError
	must_be.True(errors.As(err, &exit))
	must_be.Equal(1, exit.Code)
	must_be.Equal(0, shell.ActiveChildren())
}

func TestTimedKillsChildOnTimeout(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	task := shell.New(nil, ".", "sleep", "30")
	watch := time.Now()
	err := task.Timed(200 * time.Millisecond)
	must_be.True(errors.Is(err, shell.ErrTimeout))
	must_be.True(time.Since(watch) < 5*time.Second)
	must_be.Equal(0, shell.ActiveChildren())
}

func TestRetryOnlyOverTimeouts(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	watch := time.Now()
	err := shell.New(nil, ".", "sleep", "30").TimedWithRetry(100*time.Millisecond, 3)
	must_be.True(errors.Is(err, shell.ErrTimeout))
	must_be.True(time.Since(watch) < 3*time.Second)

	var exit *shell.ExitError
	err = shell.New(nil, ".", "false").TimedWithRetry(5*time.Second, 3)
	must_be.True(errors.As(err, &exit))
}

func TestCancelPreemptsNewChildren(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	shell.Cancel()
	err := shell.New(nil, ".", "true").Timed(time.Second)
	must_be.True(errors.Is(err, shell.ErrCancelled))
	shell.Reset()
}

func TestCancelKillsInflightChild(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	outcome := make(chan error, 1)
	go func() {
		outcome <- shell.New(nil, ".", "sleep", "30").Timed(time.Minute)
	}()
	time.Sleep(300 * time.Millisecond)
	shell.Cancel()
	select {
	case err := <-outcome:
		must_be.True(errors.Is(err, shell.ErrCancelled))
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not unblock the supervised child")
	}
	must_be.Equal(0, shell.ActiveChildren())
	shell.Reset()
}

func TestCaptureOutputGivesStdout(t *testing.T) {
	needsCoreutils(t)
	must_be, _ := hamlet.Specifications(t)

	shell.Reset()
	out, code, err := shell.New(nil, ".", "echo", "hello").CaptureOutput()
	must_be.Nil(err)
	must_be.Equal(0, code)
	must_be.Equal("hello\n", out)
}
